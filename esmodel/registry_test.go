package esmodel_test

import (
	"testing"

	"github.com/esmodel/esmodel/engine"
	"github.com/esmodel/esmodel/esmodel"
	"github.com/esmodel/esmodel/testutil"
	"github.com/esmodel/esmodel/types"
)

func TestRegisterAndLookup(t *testing.T) {
	reg := esmodel.New(engine.NewMemory())

	registered := reg.MustRegister("User", testutil.UserSchema())
	found, err := reg.Model("User")
	testutil.AssertNoError(t, err, "lookup")
	if found != registered {
		t.Error("lookup returned a different model than registration")
	}
	if found.Index() != "user" || found.DocType() != "user" {
		t.Errorf("defaults index=%s docType=%s, want user/user", found.Index(), found.DocType())
	}
}

func TestLookupUnregisteredModel(t *testing.T) {
	reg := esmodel.New(engine.NewMemory())

	_, err := reg.Model("Nope")
	var unregistered *types.UnregisteredModelError
	testutil.AssertErrorAs(t, err, &unregistered, "lookup unknown model")
	if unregistered.Name != "Nope" {
		t.Errorf("error names %q, want Nope", unregistered.Name)
	}
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := esmodel.New(engine.NewMemory())

	reg.MustRegister("User", testutil.UserSchema())
	if _, err := reg.Register("User", testutil.UserSchema()); err == nil {
		t.Error("expected an error on duplicate registration")
	}
}

func TestIndexPrefixAppliesToRegisteredModels(t *testing.T) {
	reg := esmodel.New(engine.NewMemory(), esmodel.WithIndexPrefix("app-"))

	m := reg.MustRegister("Post", testutil.PostSchema())
	if m.Index() != "app-post" {
		t.Errorf("index = %s, want app-post", m.Index())
	}
	if m.DocType() != "post" {
		t.Errorf("doc type = %s, want post", m.DocType())
	}
}

func TestRegisterOptionsOverrideDefaults(t *testing.T) {
	reg := esmodel.New(engine.NewMemory())

	m := reg.MustRegister("Post", testutil.PostSchema(),
		esmodel.WithIndex("content"), esmodel.WithDocType("entry"))
	if m.Index() != "content" || m.DocType() != "entry" {
		t.Errorf("index=%s docType=%s, want content/entry", m.Index(), m.DocType())
	}
}

func TestModelNamesListsRegistrations(t *testing.T) {
	reg := esmodel.New(engine.NewMemory())
	reg.MustRegister("User", testutil.UserSchema())
	reg.MustRegister("Post", testutil.PostSchema())

	names := reg.ModelNames()
	if len(names) != 2 {
		t.Fatalf("names = %v, want two entries", names)
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["User"] || !seen["Post"] {
		t.Errorf("names = %v, want User and Post", names)
	}
}
