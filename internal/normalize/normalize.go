// Package normalize converts raw backend payloads into the canonical Kit
// model. The backend grew two dialects for the same order entity: the kits
// resource (camelCase keys, 0/1 status flags, typed item arrays) and the
// legacy pedidos resource (nested formData/items/comments document with
// string values and mixed camelCase/snake_case keys). Both funnel through
// here into one shape.
//
// Nothing in this package returns an error or panics on malformed input:
// missing strings become "", unusable prices become nil, flags default to
// false and item lists degrade to empty slices.
package normalize

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"sisteminha/internal/model"
)

// Kit normalizes one decoded record in the kits dialect.
func Kit(v any) model.Kit {
	m, _ := v.(map[string]any)

	k := model.Kit{
		ID:            intVal(m["id"]),
		Nome:          str(m["nome"]),
		Cliente:       str(m["cliente"]),
		Responsavel:   str(m["responsavel"]),
		Revendedor:    str(m["revendedor"]),
		Telefone:      str(m["telefone"]),
		Email:         str(m["email"]),
		DataEvento:    str(m["dataEvento"]),
		Hora:          str(m["hora"]),
		Tipo:          tipoEntrega(str(m["tipo"])),
		Endereco:      str(m["endereco"]),
		Preco:         Preco(m["preco"]),
		TaxaEntrega:   Preco(m["taxaEntrega"]),
		TipoPagamento: str(m["tipoPagamento"]),
		Tamanho:       str(m["tamanho"]),
		Status: model.KitStatus{
			DocesDone:    boolish(m["statusDoces"]),
			SalgadosDone: boolish(m["statusSalgados"]),
			BolosDone:    boolish(m["statusBolos"]),
		},
		Entregue:     boolish(m["entregue"]),
		CriadoEm:     str(m["criadoEm"]),
		AtualizadoEm: str(m["atualizadoEm"]),
	}

	// Newer payloads nest the flags under a status object instead of the
	// flat statusDoces fields. Accept both.
	if st, ok := m["status"].(map[string]any); ok {
		k.Status.DocesDone = k.Status.DocesDone || boolish(st["docesDone"])
		k.Status.SalgadosDone = k.Status.SalgadosDone || boolish(st["salgadosDone"])
		k.Status.BolosDone = k.Status.BolosDone || boolish(st["bolosDone"])
	}

	if c, ok := m["comments"].(map[string]any); ok && len(c) > 0 {
		k.Comments = map[string]string{
			"doces":    str(c["doces"]),
			"salgados": str(c["salgados"]),
			"bolos":    str(c["bolos"]),
		}
	}

	k.Doces = items(m["doces"], k.ID)
	k.Salgados = items(m["salgados"], k.ID)
	k.Bolos = bolos(m["bolos"], k.ID)
	return k
}

// Kits normalizes a list payload in the kits dialect and orders it by
// last-updated timestamp, most recently touched first. The comparison is a
// plain string compare over the ISO-ish timestamps; no timezone
// normalization happens (known limitation, matches the backend contract).
func Kits(v any) []model.Kit {
	raw := listOf(v)
	kits := make([]model.Kit, 0, len(raw))
	for _, r := range raw {
		kits = append(kits, Kit(r))
	}
	sort.SliceStable(kits, func(i, j int) bool {
		return kits[i].AtualizadoEm > kits[j].AtualizadoEm
	})
	return kits
}

// Legacy formData key mapping, old → canonical. snake_case is the older
// spelling; when both appear the camelCase one wins.
//
//	endereco_entrega → enderecoEntrega → Endereco
//	preco_total      → precoTotal      → Preco
//	taxa_entrega     → taxaEntrega     → TaxaEntrega
//	tipo_pagamento   → tipoPagamento   → TipoPagamento

// Pedido normalizes one decoded record in the legacy pedidos document
// dialect into the same canonical Kit.
func Pedido(v any) model.Kit {
	m, _ := v.(map[string]any)
	id := intVal(m["id"])
	form, _ := m["formData"].(map[string]any)
	rawItems, _ := m["items"].(map[string]any)
	rawComments, _ := m["comments"].(map[string]any)

	k := model.Kit{
		ID:            id,
		Nome:          str(form["cliente"]),
		Cliente:       str(form["cliente"]),
		Responsavel:   str(form["responsavel"]),
		Revendedor:    str(form["revendedor"]),
		Telefone:      str(form["telefone"]),
		DataEvento:    str(form["data"]),
		Hora:          str(form["horario"]),
		Tipo:          tipoEntrega(str(form["retirada"])),
		Endereco:      str(either(form, "enderecoEntrega", "endereco_entrega")),
		Preco:         Preco(either(form, "precoTotal", "preco_total")),
		TaxaEntrega:   Preco(either(form, "taxaEntrega", "taxa_entrega")),
		TipoPagamento: str(either(form, "tipoPagamento", "tipo_pagamento")),
		Tamanho:       str(form["tamanho"]),
		Entregue:      boolish(form["entregue"]),
		CriadoEm:      str(m["criadoEm"]),
		AtualizadoEm:  str(m["atualizadoEm"]),
	}

	k.Doces = itemLines(rawItems["doces"], id)
	k.Salgados = itemLines(rawItems["salgados"], id)
	for _, it := range itemLines(rawItems["bolos"], id) {
		k.Bolos = append(k.Bolos, model.Bolo{Item: it})
	}
	if k.Bolos == nil {
		k.Bolos = []model.Bolo{}
	}

	if len(rawComments) > 0 {
		k.Comments = map[string]string{
			"doces":    str(rawComments["doces"]),
			"salgados": str(rawComments["salgados"]),
			"bolos":    str(rawComments["bolos"]),
		}
	}
	return k
}

// Pedidos normalizes a list payload in the pedidos dialect. The legacy
// controller wraps the array ({pedidos: [...]}); older variants returned it
// bare or under data/items.
func Pedidos(v any) []model.Kit {
	raw := listOf(v)
	kits := make([]model.Kit, 0, len(raw))
	for _, r := range raw {
		kits = append(kits, Pedido(r))
	}
	return kits
}

// Preco parses a currency amount that may arrive as a JSON number or as a
// formatted string like "R$ 1.234,56". Everything that is not a digit, a
// comma or a minus sign is discarded and the comma becomes the decimal
// point. Unparseable or non-finite values yield nil.
func Preco(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(n)
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return finite(f)
		}
		var b strings.Builder
		for _, r := range s {
			if r >= '0' && r <= '9' || r == ',' || r == '-' {
				b.WriteRune(r)
			}
		}
		cleaned := strings.Replace(b.String(), ",", ".", 1)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		return finite(f)
	default:
		return nil
	}
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// listOf unwraps the list envelopes the backends use: a bare array, or an
// object wrapping it under pedidos, data or items.
func listOf(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		for _, key := range []string{"pedidos", "data", "items"} {
			if arr, ok := t[key].([]any); ok {
				return arr
			}
		}
	}
	return nil
}

// items accepts an array of item records, a single record (promoted to a
// one-element list) or garbage (empty list).
func items(v any, kitID int64) []model.Item {
	out := []model.Item{}
	for _, r := range itemList(v) {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.Item{
			ID:         intVal(m["id"]),
			KitID:      kitID,
			Sabor:      str(m["sabor"]),
			Quantidade: quantity(m["quantidade"]),
			Unidade:    str(m["unidade"]),
			Observacao: str(m["observacao"]),
		})
	}
	return out
}

func bolos(v any, kitID int64) []model.Bolo {
	out := []model.Bolo{}
	for _, r := range itemList(v) {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.Bolo{
			Item: model.Item{
				ID:         intVal(m["id"]),
				KitID:      kitID,
				Sabor:      str(m["sabor"]),
				Quantidade: quantity(m["quantidade"]),
				Unidade:    str(m["unidade"]),
				Observacao: str(m["observacao"]),
			},
			Texto: str(m["texto"]),
		})
	}
	return out
}

// itemLines maps legacy descricao/quantidade/unidade lines onto items.
func itemLines(v any, kitID int64) []model.Item {
	out := []model.Item{}
	for _, r := range itemList(v) {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.Item{
			KitID:      kitID,
			Sabor:      str(m["descricao"]),
			Quantidade: quantity(m["quantidade"]),
			Unidade:    str(m["unidade"]),
		})
	}
	return out
}

func itemList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		// A single item object shows up when the serializer collapses a
		// one-element list; any other object is a keyed collection.
		if _, ok := t["sabor"]; ok {
			return []any{t}
		}
		if _, ok := t["quantidade"]; ok {
			return []any{t}
		}
		if _, ok := t["descricao"]; ok {
			return []any{t}
		}
		vals := make([]any, 0, len(t))
		for _, key := range sortedKeys(t) {
			vals = append(vals, t[key])
		}
		return vals
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func either(m map[string]any, camel, snake string) any {
	if v, ok := m[camel]; ok && v != nil {
		return v
	}
	return m[snake]
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func intVal(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int:
		return int64(t)
	case int64:
		return t
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n
	default:
		return 0
	}
}

// quantity coerces the quantity field, which is a number on the kits
// resource and a string (sometimes with a comma decimal) on the legacy one.
// Anything unusable counts as zero so totals never see NaN.
func quantity(v any) int {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int(t)
	case int:
		return t
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", ".")
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return int(f)
	default:
		return 0
	}
}

func boolish(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return t == "1" || t == "true"
	default:
		return false
	}
}

func tipoEntrega(s string) model.TipoEntrega {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entrega":
		return model.Entrega
	case "retirada":
		return model.Retirada
	default:
		// The legacy form stores RETIRADA/ENTREGA in caps; anything else
		// defaults to pickup, the less demanding variant.
		return model.Retirada
	}
}
