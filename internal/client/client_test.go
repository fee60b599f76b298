package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"sisteminha/internal/cache"
	"sisteminha/internal/filter"
	"sisteminha/internal/model"
)

func TestListKitsNormalizesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/kits" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"id":1,"nome":"Kit","telefone":"11","statusDoces":1,"preco":"150,00"}]}`))
	}))
	defer srv.Close()

	kits, err := New(srv.URL).ListKits(context.Background())
	if err != nil {
		t.Fatalf("list kits: %v", err)
	}
	if len(kits) != 1 {
		t.Fatalf("got %d kits", len(kits))
	}
	if !kits[0].Status.DocesDone {
		t.Error("status flag not normalized")
	}
	if kits[0].Preco == nil || *kits[0].Preco != 150.0 {
		t.Errorf("preco = %v", kits[0].Preco)
	}
}

func TestGetPedidoNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"pedido not found"}`))
	}))
	defer srv.Close()

	k, err := New(srv.URL).GetPedido(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected nil error on 404, got %v", err)
	}
	if k != nil {
		t.Errorf("expected nil kit, got %+v", k)
	}
}

func TestAPIErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":["nome é obrigatório","telefone é obrigatório"]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateKit(context.Background(), model.Kit{})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d", apiErr.Status)
	}
	if apiErr.Message != "nome é obrigatório; telefone é obrigatório" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestLoginInstallsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"id":1,"email":"ana@example.com","name":"Ana","role":"staff","token":"tok123"}`))
		default:
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.Login(context.Background(), "ana@example.com", "segredo")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "tok123" {
		t.Errorf("token = %q", res.Token)
	}

	if _, err := c.ListKits(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("authorization header = %q", gotAuth)
	}
}

func TestLatestSupersedes(t *testing.T) {
	var l Latest
	firstStarted := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	var firstLatest bool
	wg.Add(1)
	go func() {
		defer wg.Done()
		latest, _ := l.Do(context.Background(), func(ctx context.Context) error {
			close(firstStarted)
			<-ctx.Done() // canceled by the second Do
			<-release
			return ctx.Err()
		})
		firstLatest = latest
	}()

	<-firstStarted
	secondLatest, err := l.Do(context.Background(), func(ctx context.Context) error {
		return nil
	})
	close(release)
	wg.Wait()

	if err != nil {
		t.Fatalf("second do: %v", err)
	}
	if !secondLatest {
		t.Error("newest fetch must win")
	}
	if firstLatest {
		t.Error("superseded fetch must be discarded even if it finishes late")
	}
}

func TestLatestStopCancels(t *testing.T) {
	var l Latest
	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := l.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
		done <- err
	}()

	<-started
	l.Stop()
	if err := <-done; err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFeedFallsBackToCache(t *testing.T) {
	cs, err := cache.Open(":memory:")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	if _, err := cs.Append(model.Kit{Cliente: "Maria", DataEvento: "2025-06-10"}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	if _, err := cs.Append(model.Kit{Cliente: "Ana", DataEvento: "2025-07-01"}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	srv.Close() // transport failure, not an HTTP error

	feed := NewFeed(New(srv.URL), cs)
	res, latest := feed.Refresh(context.Background(), filter.Spec{Cliente: "maria"})
	if !latest {
		t.Fatal("single refresh must be latest")
	}
	if !res.LocalOnly {
		t.Error("expected local-only result")
	}
	if res.Err == nil {
		t.Error("the transport failure must be reported alongside the stale data")
	}
	if len(res.Kits) != 1 || res.Kits[0].Cliente != "Maria" {
		t.Errorf("cached kits = %+v", res.Kits)
	}
}

func TestFeedServesAndFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":1,"nome":"A","cliente":"Maria","telefone":"11","dataEvento":"2025-06-10"},
			{"id":2,"nome":"B","cliente":"Ana","telefone":"11","dataEvento":"2025-06-11"}
		]`))
	}))
	defer srv.Close()

	feed := NewFeed(New(srv.URL), nil)
	res, latest := feed.Refresh(context.Background(), filter.Spec{Data: "2025-06-11"})
	if !latest {
		t.Fatal("single refresh must be latest")
	}
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.LocalOnly {
		t.Error("live result flagged local-only")
	}
	if len(res.Kits) != 1 || res.Kits[0].Cliente != "Ana" {
		t.Errorf("filtered kits = %+v", res.Kits)
	}
}

func TestFeedSubmitStoresLocallyOnTransportFailure(t *testing.T) {
	cs, err := cache.Open(":memory:")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { cs.Close() })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	feed := NewFeed(New(srv.URL), cs)
	local, localOnly, err := feed.Submit(context.Background(), model.Kit{Nome: "Kit", Cliente: "Maria", Telefone: "11"})
	if err == nil {
		t.Fatal("transport failure must still be reported")
	}
	if !localOnly {
		t.Error("expected local-only submit")
	}
	if local == nil || local.ID != 1 {
		t.Errorf("local order = %+v", local)
	}
	if got := cs.Load(); len(got) != 1 {
		t.Errorf("cache holds %d orders, want 1", len(got))
	}
}

func TestFeedSubmitDoesNotCacheRejects(t *testing.T) {
	cs, err := cache.Open(":memory:")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { cs.Close() })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":["nome é obrigatório"]}`))
	}))
	defer srv.Close()

	feed := NewFeed(New(srv.URL), cs)
	_, localOnly, err := feed.Submit(context.Background(), model.Kit{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if localOnly {
		t.Error("rejected orders must not be stashed locally")
	}
	if got := cs.Load(); len(got) != 0 {
		t.Errorf("cache holds %d orders, want 0", len(got))
	}
}
