// Package filter applies screen filter criteria to canonical kit lists and
// sorts the result. Everything here is pure and deterministic; sorts are
// stable so ties keep their input order.
//
// Two date semantics coexist on purpose: operational and print screens
// (Kits, Doces/Salgados/Bolos, Relação, Consolidado) filter on the exact
// event date, while the financial and report screens take an inclusive
// range. The Spec exposes them as separate fields so a screen cannot mix
// them up by accident.
package filter

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"sisteminha/internal/model"
)

// Categoria selects kits that have at least one item of the given kind.
type Categoria string

const (
	CategoriaDoces    Categoria = "doces"
	CategoriaSalgados Categoria = "salgados"
	CategoriaBolos    Categoria = "bolos"
)

// Spec is a screen's filter configuration. Zero values mean "no filter".
type Spec struct {
	Data       string // exact event-date match, "2006-01-02"
	DataInicio string // inclusive lower bound on event date
	DataFim    string // inclusive upper bound on event date

	Cliente     string // token-AND, case- and accent-insensitive
	Responsavel string // same matching as Cliente
	Numero      string // digits; substring of the decimal order id
	Horario     string // prefix match on "15:04"

	Tipo      model.TipoEntrega // exact, or "" for any
	Categoria Categoria         // non-empty item list required, or ""
}

// Apply returns the kits matching every set field of the spec, preserving
// input order.
func Apply(kits []model.Kit, s Spec) []model.Kit {
	out := make([]model.Kit, 0, len(kits))
	for _, k := range kits {
		if Match(k, s) {
			out = append(out, k)
		}
	}
	return out
}

// Match reports whether a single kit satisfies the spec.
func Match(k model.Kit, s Spec) bool {
	if d := strings.TrimSpace(s.Data); d != "" && k.DataEvento != d {
		return false
	}
	if from := strings.TrimSpace(s.DataInicio); from != "" && k.DataEvento < from {
		return false
	}
	if to := strings.TrimSpace(s.DataFim); to != "" && k.DataEvento > to {
		return false
	}
	if !MatchName(k.Cliente, s.Cliente) && !matchNameFallback(k, s.Cliente) {
		return false
	}
	if s.Responsavel != "" && !MatchName(k.Responsavel, s.Responsavel) {
		return false
	}
	if n := strings.TrimSpace(s.Numero); n != "" && !MatchNumero(k.ID, n) {
		return false
	}
	if h := strings.TrimSpace(s.Horario); h != "" && !strings.HasPrefix(k.Hora, h) {
		return false
	}
	if s.Tipo != "" && k.Tipo != s.Tipo {
		return false
	}
	if s.Categoria != "" && !HasItems(k, s.Categoria) {
		return false
	}
	return true
}

// Kits registered through the kits resource carry the label in Nome and may
// leave Cliente empty; accept a name-field hit too.
func matchNameFallback(k model.Kit, query string) bool {
	if strings.TrimSpace(query) == "" {
		return false
	}
	return MatchName(k.Nome, query)
}

// MatchName matches every whitespace-separated token of the query as a
// substring of the name, all of them (AND, not phrase). Comparison is
// case-insensitive and ignores accents, so "joao silva" finds
// "João da Silva" but not "João" alone.
func MatchName(name, query string) bool {
	q := Fold(query)
	if q == "" {
		return true
	}
	n := Fold(name)
	for _, token := range strings.Fields(q) {
		if !strings.Contains(n, token) {
			return false
		}
	}
	return true
}

// MatchNumero reports whether the digits query occurs anywhere inside the
// decimal representation of the id ("23" matches 123 and 230).
func MatchNumero(id int64, digits string) bool {
	return strings.Contains(strconv.FormatInt(id, 10), digits)
}

// HasItems reports whether the kit has at least one item of the category.
func HasItems(k model.Kit, c Categoria) bool {
	switch c {
	case CategoriaDoces:
		return len(k.Doces) > 0
	case CategoriaSalgados:
		return len(k.Salgados) > 0
	case CategoriaBolos:
		return len(k.Bolos) > 0
	default:
		return true
	}
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases, strips diacritics and collapses runs of whitespace so
// user-typed queries compare loosely.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
