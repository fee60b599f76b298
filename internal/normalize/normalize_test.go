package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"sisteminha/internal/model"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return v
}

func TestKitDefaults(t *testing.T) {
	k := Kit(decode(t, `{"id": 7}`))

	if k.ID != 7 {
		t.Errorf("id = %d, want 7", k.ID)
	}
	if k.Nome != "" || k.Telefone != "" || k.Endereco != "" {
		t.Errorf("missing strings should be empty, got %q %q %q", k.Nome, k.Telefone, k.Endereco)
	}
	if k.Preco != nil {
		t.Errorf("missing preco should be nil, got %v", *k.Preco)
	}
	if k.Status.DocesDone || k.Status.SalgadosDone || k.Status.BolosDone || k.Entregue {
		t.Error("missing flags should be false")
	}
	if k.Doces == nil || len(k.Doces) != 0 {
		t.Errorf("missing doces should be empty slice, got %#v", k.Doces)
	}
	if k.Tipo != model.Retirada {
		t.Errorf("tipo = %q, want retirada default", k.Tipo)
	}
}

func TestKitNeverPanicsOnGarbage(t *testing.T) {
	for _, fixture := range []string{
		`null`, `[]`, `"texto"`, `42`,
		`{"doces": "nope", "salgados": 3, "bolos": null}`,
		`{"preco": {"nested": true}, "statusDoces": "talvez"}`,
	} {
		_ = Kit(decode(t, fixture))
	}
}

func TestPrecoParsing(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{`1234.56`, 1234.56, true},
		{`"1234.56"`, 1234.56, true},
		{`"R$ 1.234,56"`, 1234.56, true},
		{`"1.234,56"`, 1234.56, true},
		{`"R$ 50"`, 50, true},
		{`"12,5"`, 12.5, true},
		{`"abc"`, 0, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
	}
	for _, tt := range tests {
		got := Preco(decode(t, tt.in))
		if tt.ok {
			if got == nil {
				t.Errorf("Preco(%s) = nil, want %v", tt.in, tt.want)
			} else if *got != tt.want {
				t.Errorf("Preco(%s) = %v, want %v", tt.in, *got, tt.want)
			}
		} else if got != nil {
			t.Errorf("Preco(%s) = %v, want nil", tt.in, *got)
		}
	}
}

func TestStatusFlagsAcceptIntsAndBools(t *testing.T) {
	k := Kit(decode(t, `{"id":1,"statusDoces":1,"statusSalgados":0,"statusBolos":true,"entregue":1}`))
	if !k.Status.DocesDone || k.Status.SalgadosDone || !k.Status.BolosDone {
		t.Errorf("status = %+v", k.Status)
	}
	if !k.Entregue {
		t.Error("entregue = false, want true")
	}
}

func TestSingleItemPromotedToList(t *testing.T) {
	k := Kit(decode(t, `{"id":1,"doces":{"id":9,"sabor":"BRIGADEIRO","quantidade":25}}`))
	if len(k.Doces) != 1 {
		t.Fatalf("doces len = %d, want 1", len(k.Doces))
	}
	if k.Doces[0].Sabor != "BRIGADEIRO" || k.Doces[0].Quantidade != 25 {
		t.Errorf("doces[0] = %+v", k.Doces[0])
	}
	if k.Doces[0].KitID != 1 {
		t.Errorf("kitId = %d, want 1", k.Doces[0].KitID)
	}
}

func TestQuantityStringAndNaNBecomeNumbers(t *testing.T) {
	k := Kit(decode(t, `{"id":1,"salgados":[{"sabor":"COXINHA","quantidade":"100"},{"sabor":"KIBE","quantidade":"x"}]}`))
	if k.Salgados[0].Quantidade != 100 {
		t.Errorf("quantidade = %d, want 100", k.Salgados[0].Quantidade)
	}
	if k.Salgados[1].Quantidade != 0 {
		t.Errorf("bad quantidade = %d, want 0", k.Salgados[1].Quantidade)
	}
}

func TestKitsSortedByAtualizadoEmDesc(t *testing.T) {
	kits := Kits(decode(t, `[
		{"id":1,"atualizadoEm":"2025-01-01T10:00:00"},
		{"id":2,"atualizadoEm":"2025-03-01T10:00:00"},
		{"id":3,"atualizadoEm":"2025-02-01T10:00:00"}
	]`))
	want := []int64{2, 3, 1}
	for i, id := range want {
		if kits[i].ID != id {
			t.Errorf("kits[%d].ID = %d, want %d", i, kits[i].ID, id)
		}
	}
}

func TestKitsListEnvelopes(t *testing.T) {
	for _, fixture := range []string{
		`[{"id":1}]`,
		`{"pedidos":[{"id":1}]}`,
		`{"data":[{"id":1}]}`,
		`{"items":[{"id":1}]}`,
	} {
		if got := Kits(decode(t, fixture)); len(got) != 1 || got[0].ID != 1 {
			t.Errorf("Kits(%s) = %+v, want one kit with id 1", fixture, got)
		}
	}
	if got := Kits(decode(t, `{"outra":"coisa"}`)); len(got) != 0 {
		t.Errorf("unknown envelope should yield empty list, got %+v", got)
	}
}

func TestListThenSingleIsIdempotent(t *testing.T) {
	raw := decode(t, `[
		{"id":1,"nome":"Festa A","preco":"1.500,00","statusDoces":1,
		 "doces":[{"id":1,"sabor":"BEIJINHO","quantidade":"50"}],
		 "atualizadoEm":"2025-05-02T08:00:00"},
		{"id":2,"nome":"Festa B","atualizadoEm":"2025-05-01T08:00:00"}
	]`)
	fromList := Kits(raw)

	elements := raw.([]any)
	for _, k := range fromList {
		var match model.Kit
		for _, el := range elements {
			one := Kit(el)
			if one.ID == k.ID {
				match = one
				break
			}
		}
		if !reflect.DeepEqual(k, match) {
			t.Errorf("kit %d: list path and single path disagree:\n%+v\n%+v", k.ID, k, match)
		}
	}
}

func TestPedidoSnakeAndCamelKeys(t *testing.T) {
	snake := Pedido(decode(t, `{
		"id": 12,
		"formData": {
			"cliente": "Maria", "responsavel": "Ana", "telefone": "119999",
			"retirada": "ENTREGA", "data": "2025-06-10", "horario": "14:00",
			"endereco_entrega": "Rua B, 10", "preco_total": "350,00",
			"taxa_entrega": "20,00", "tipo_pagamento": "PIX"
		},
		"items": {"doces": [{"descricao": "BRIGADEIRO", "quantidade": "100", "unidade": "UN"}]}
	}`))
	if snake.Endereco != "Rua B, 10" {
		t.Errorf("endereco = %q", snake.Endereco)
	}
	if snake.Preco == nil || *snake.Preco != 350 {
		t.Errorf("preco = %v, want 350", snake.Preco)
	}
	if snake.TaxaEntrega == nil || *snake.TaxaEntrega != 20 {
		t.Errorf("taxa = %v, want 20", snake.TaxaEntrega)
	}
	if snake.TipoPagamento != "PIX" {
		t.Errorf("tipoPagamento = %q", snake.TipoPagamento)
	}
	if snake.Tipo != model.Entrega {
		t.Errorf("tipo = %q, want entrega", snake.Tipo)
	}
	if len(snake.Doces) != 1 || snake.Doces[0].Sabor != "BRIGADEIRO" || snake.Doces[0].Quantidade != 100 {
		t.Errorf("doces = %+v", snake.Doces)
	}

	camel := Pedido(decode(t, `{
		"id": 13,
		"formData": {"enderecoEntrega": "Rua C", "precoTotal": "100,00", "tipoPagamento": "DINHEIRO", "retirada": "RETIRADA"}
	}`))
	if camel.Endereco != "Rua C" || camel.TipoPagamento != "DINHEIRO" {
		t.Errorf("camel keys not picked up: %+v", camel)
	}
	if camel.Preco == nil || *camel.Preco != 100 {
		t.Errorf("preco = %v, want 100", camel.Preco)
	}
	if camel.Tipo != model.Retirada {
		t.Errorf("tipo = %q, want retirada", camel.Tipo)
	}
}

func TestPedidosEnvelope(t *testing.T) {
	kits := Pedidos(decode(t, `{"pedidos":[{"id":1,"formData":{"cliente":"A"}},{"id":2,"formData":{"cliente":"B"}}]}`))
	if len(kits) != 2 {
		t.Fatalf("len = %d, want 2", len(kits))
	}
	if kits[0].Cliente != "A" || kits[1].Cliente != "B" {
		t.Errorf("clientes = %q, %q", kits[0].Cliente, kits[1].Cliente)
	}
}
