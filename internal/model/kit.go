package model

// TipoEntrega is the delivery mode of a kit: picked up at the counter or
// delivered to an address.
type TipoEntrega string

const (
	Retirada TipoEntrega = "retirada"
	Entrega  TipoEntrega = "entrega"
)

// Payment type tags accepted on an order. The vocabulary is fixed but the
// field is optional.
var TiposPagamento = []string{
	"QRCODE", "PIX", "DÉBITO", "CRÉDITO", "DINHEIRO", "GUIA", "NOTA", "VALE", "VOUCHER",
}

// Item is one line of a kit: a flavor and a quantity. Sabor is drawn from a
// suggested vocabulary but free-form. Unidade only appears on orders that
// came in through the legacy document shape.
type Item struct {
	ID         int64  `json:"id"`
	KitID      int64  `json:"kitId"`
	Sabor      string `json:"sabor"`
	Quantidade int    `json:"quantidade"`
	Unidade    string `json:"unidade,omitempty"`
	Observacao string `json:"observacao,omitempty"`
}

// Bolo is a cake line; on top of the common fields it can carry an
// inscription written on the cake.
type Bolo struct {
	Item
	Texto string `json:"texto,omitempty"`
}

// KitStatus holds the three independent per-category completion flags.
// They are independent of Entregue: a kit can be marked delivered while a
// category is still open.
type KitStatus struct {
	DocesDone    bool `json:"docesDone"`
	SalgadosDone bool `json:"salgadosDone"`
	BolosDone    bool `json:"bolosDone"`
}

// Kit is the canonical order. Every backend dialect normalizes into this
// shape; every screen consumes it.
//
// DataEvento and Hora are kept as strings ("2006-01-02", "15:04") and
// compared as strings throughout. CriadoEm/AtualizadoEm are the backend's
// ISO-ish timestamps, also compared as strings with no timezone
// normalization.
type Kit struct {
	ID          int64       `json:"id"`
	Nome        string      `json:"nome"`
	Cliente     string      `json:"cliente,omitempty"`
	Responsavel string      `json:"responsavel,omitempty"`
	Revendedor  string      `json:"revendedor,omitempty"`
	Telefone    string      `json:"telefone"`
	Email       string      `json:"email,omitempty"`
	DataEvento  string      `json:"dataEvento,omitempty"`
	Hora        string      `json:"hora,omitempty"`
	Tipo        TipoEntrega `json:"tipo"`
	Endereco    string      `json:"endereco,omitempty"`

	// Preco is nil when the backend did not send a usable price; the
	// reporting layer then estimates revenue from unit prices instead.
	Preco       *float64 `json:"preco,omitempty"`
	TaxaEntrega *float64 `json:"taxaEntrega,omitempty"`

	TipoPagamento string `json:"tipoPagamento,omitempty"`
	Tamanho       string `json:"tamanho,omitempty"`

	Doces    []Item `json:"doces"`
	Salgados []Item `json:"salgados"`
	Bolos    []Bolo `json:"bolos"`

	// Comments are free-text per-category notes from the legacy document
	// shape (keyed doces/salgados/bolos).
	Comments map[string]string `json:"comments,omitempty"`

	Status   KitStatus `json:"status"`
	Entregue bool      `json:"entregue"`

	CriadoEm     string `json:"criadoEm,omitempty"`
	AtualizadoEm string `json:"atualizadoEm,omitempty"`
}
