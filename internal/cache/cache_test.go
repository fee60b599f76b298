package cache

import (
	"testing"

	"sisteminha/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEmptyCache(t *testing.T) {
	s := openTestStore(t)

	if kits := s.Load(); len(kits) != 0 {
		t.Errorf("empty cache should load empty list, got %d", len(kits))
	}
	if id := s.NextID(); id != 1 {
		t.Errorf("NextID on empty cache = %d, want 1", id)
	}
}

func TestAppendAssignsMaxPlusOne(t *testing.T) {
	s := openTestStore(t)

	first, err := s.Append(model.Kit{Cliente: "Maria"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID != 1 {
		t.Errorf("first id = %d, want 1", first.ID)
	}

	if _, err := s.Append(model.Kit{ID: 10, Cliente: "Ana"}); err != nil {
		t.Fatalf("append explicit id: %v", err)
	}

	third, err := s.Append(model.Kit{Cliente: "José"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if third.ID != 11 {
		t.Errorf("third id = %d, want max+1 = 11", third.ID)
	}

	kits := s.Load()
	if len(kits) != 3 {
		t.Fatalf("loaded %d kits, want 3", len(kits))
	}
	if kits[2].Cliente != "José" {
		t.Errorf("order not preserved: %+v", kits[2])
	}
}

func TestMalformedPayloadDegradesToEmpty(t *testing.T) {
	s := openTestStore(t)

	for _, payload := range []string{`{not json`, `"uma string"`, `{"a":1}`, `null`} {
		if err := s.put(payload); err != nil {
			t.Fatalf("put: %v", err)
		}
		if kits := s.Load(); len(kits) != 0 {
			t.Errorf("payload %q should load as empty, got %d", payload, len(kits))
		}
	}
	if id := s.NextID(); id != 1 {
		t.Errorf("NextID after corruption = %d, want 1", id)
	}
}

func TestCachedKitsSkipNormalization(t *testing.T) {
	s := openTestStore(t)

	preco := 150.0
	k := model.Kit{
		Cliente: "Maria", DataEvento: "2025-06-10", Hora: "14:00",
		Tipo: model.Entrega, Preco: &preco,
		Doces: []model.Item{{Sabor: "BRIGADEIRO", Quantidade: 100}},
	}
	if _, err := s.Append(k); err != nil {
		t.Fatalf("append: %v", err)
	}

	got := s.Load()[0]
	if got.Preco == nil || *got.Preco != 150.0 {
		t.Errorf("preco round trip = %v", got.Preco)
	}
	if len(got.Doces) != 1 || got.Doces[0].Quantidade != 100 {
		t.Errorf("items round trip = %+v", got.Doces)
	}
	if got.Tipo != model.Entrega {
		t.Errorf("tipo round trip = %q", got.Tipo)
	}
}
