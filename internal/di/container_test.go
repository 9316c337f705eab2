package di

import "testing"

type fakeService struct {
	name string
}

func TestContainer_RegisterAndGet(t *testing.T) {
	c := NewContainer()
	c.Register("svc", &fakeService{name: "a"})

	got := c.Get("svc").(*fakeService)
	if got.name != "a" {
		t.Errorf("expected a, got %s", got.name)
	}
}

func TestContainer_FactoryRunsOnce(t *testing.T) {
	c := NewContainer()

	calls := 0
	c.RegisterFactory("svc", func(ServiceRegistry) any {
		calls++
		return &fakeService{name: "lazy"}
	})

	first := c.Get("svc")
	second := c.Get("svc")

	if calls != 1 {
		t.Errorf("factory ran %d times, want 1", calls)
	}
	if first != second {
		t.Error("expected cached instance")
	}
}

func TestContainer_UnknownServicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown service")
		}
	}()
	NewContainer().Get("missing")
}

func TestTypedTokens(t *testing.T) {
	c := NewContainer()

	token := NewToken[*fakeService]("test.fake")
	RegisterToken(c, token, func(ServiceRegistry) *fakeService {
		return &fakeService{name: "typed"}
	})

	got := GetToken(c, token)
	if got.name != "typed" {
		t.Errorf("expected typed, got %s", got.name)
	}
}

func TestTokenResolvesDependencies(t *testing.T) {
	c := NewContainer()
	c.Register("config", "cfg-value")

	token := NewToken[*fakeService]("test.dep")
	RegisterToken(c, token, func(sr ServiceRegistry) *fakeService {
		return &fakeService{name: sr.Get("config").(string)}
	})

	if got := GetToken(c, token); got.name != "cfg-value" {
		t.Errorf("expected cfg-value, got %s", got.name)
	}
}
