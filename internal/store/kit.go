package store

import (
	"database/sql"
	"fmt"

	"sisteminha/internal/model"
)

// Item kinds as stored and as they appear in the collection endpoints.
const (
	KindDoces    = "doces"
	KindSalgados = "salgados"
	KindBolos    = "bolos"
)

// ValidKind reports whether kind names one of the three item collections.
func ValidKind(kind string) bool {
	return kind == KindDoces || kind == KindSalgados || kind == KindBolos
}

type KitStore struct {
	db *sql.DB
}

func NewKitStore(db *sql.DB) *KitStore {
	return &KitStore{db: db}
}

const kitCols = `id, nome, cliente, responsavel, revendedor, telefone, email,
	data_evento, hora, tipo, endereco, preco, taxa_entrega, tipo_pagamento, tamanho,
	status_doces, status_salgados, status_bolos, entregue,
	comentario_doces, comentario_salgados, comentario_bolos,
	criado_em, atualizado_em`

func scanKit(scanner interface{ Scan(...any) error }) (*model.Kit, error) {
	var k model.Kit
	var tipo string
	var preco, taxa sql.NullFloat64
	var statusDoces, statusSalgados, statusBolos, entregue int
	var comDoces, comSalgados, comBolos string

	err := scanner.Scan(
		&k.ID, &k.Nome, &k.Cliente, &k.Responsavel, &k.Revendedor, &k.Telefone, &k.Email,
		&k.DataEvento, &k.Hora, &tipo, &k.Endereco, &preco, &taxa, &k.TipoPagamento, &k.Tamanho,
		&statusDoces, &statusSalgados, &statusBolos, &entregue,
		&comDoces, &comSalgados, &comBolos,
		&k.CriadoEm, &k.AtualizadoEm,
	)
	if err != nil {
		return nil, err
	}

	k.Tipo = model.TipoEntrega(tipo)
	if preco.Valid {
		k.Preco = &preco.Float64
	}
	if taxa.Valid {
		k.TaxaEntrega = &taxa.Float64
	}
	k.Status = model.KitStatus{
		DocesDone:    statusDoces != 0,
		SalgadosDone: statusSalgados != 0,
		BolosDone:    statusBolos != 0,
	}
	k.Entregue = entregue != 0
	if comDoces != "" || comSalgados != "" || comBolos != "" {
		k.Comments = map[string]string{
			"doces":    comDoces,
			"salgados": comSalgados,
			"bolos":    comBolos,
		}
	}
	k.Doces = []model.Item{}
	k.Salgados = []model.Item{}
	k.Bolos = []model.Bolo{}
	return &k, nil
}

// List returns kits with their items, most recently updated first.
// entregues scopes by the delivered flag when non-nil.
func (s *KitStore) List(entregues *bool) ([]model.Kit, error) {
	query := `SELECT ` + kitCols + ` FROM kits`
	var args []any
	if entregues != nil {
		query += ` WHERE entregue = ?`
		if *entregues {
			args = append(args, 1)
		} else {
			args = append(args, 0)
		}
	}
	query += ` ORDER BY atualizado_em DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list kits: %w", err)
	}
	defer rows.Close()

	var kits []model.Kit
	index := map[int64]int{}
	for rows.Next() {
		k, err := scanKit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan kit: %w", err)
		}
		index[k.ID] = len(kits)
		kits = append(kits, *k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(kits) == 0 {
		return []model.Kit{}, nil
	}

	if err := s.attachItems(kits, index); err != nil {
		return nil, err
	}
	return kits, nil
}

func (s *KitStore) attachItems(kits []model.Kit, index map[int64]int) error {
	rows, err := s.db.Query(
		`SELECT id, kit_id, kind, sabor, quantidade, unidade, observacao, texto
		 FROM kit_items ORDER BY kit_id, id`)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it model.Item
		var kind, texto string
		if err := rows.Scan(&it.ID, &it.KitID, &kind, &it.Sabor, &it.Quantidade, &it.Unidade, &it.Observacao, &texto); err != nil {
			return fmt.Errorf("scan item: %w", err)
		}
		i, ok := index[it.KitID]
		if !ok {
			continue
		}
		switch kind {
		case KindDoces:
			kits[i].Doces = append(kits[i].Doces, it)
		case KindSalgados:
			kits[i].Salgados = append(kits[i].Salgados, it)
		case KindBolos:
			kits[i].Bolos = append(kits[i].Bolos, model.Bolo{Item: it, Texto: texto})
		}
	}
	return rows.Err()
}

// GetByID returns one kit with items, or nil when it does not exist.
func (s *KitStore) GetByID(id int64) (*model.Kit, error) {
	row := s.db.QueryRow(`SELECT `+kitCols+` FROM kits WHERE id = ?`, id)
	k, err := scanKit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get kit: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, kit_id, kind, sabor, quantidade, unidade, observacao, texto
		 FROM kit_items WHERE kit_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get kit items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it model.Item
		var kind, texto string
		if err := rows.Scan(&it.ID, &it.KitID, &kind, &it.Sabor, &it.Quantidade, &it.Unidade, &it.Observacao, &texto); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		switch kind {
		case KindDoces:
			k.Doces = append(k.Doces, it)
		case KindSalgados:
			k.Salgados = append(k.Salgados, it)
		case KindBolos:
			k.Bolos = append(k.Bolos, model.Bolo{Item: it, Texto: texto})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return k, nil
}

// Create inserts a kit and its initial item lists in one transaction and
// returns the stored kit.
func (s *KitStore) Create(k model.Kit) (*model.Kit, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO kits (nome, cliente, responsavel, revendedor, telefone, email,
			data_evento, hora, tipo, endereco, preco, taxa_entrega, tipo_pagamento, tamanho,
			entregue, comentario_doces, comentario_salgados, comentario_bolos)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		k.Nome, k.Cliente, k.Responsavel, k.Revendedor, k.Telefone, k.Email,
		k.DataEvento, k.Hora, string(k.Tipo), k.Endereco,
		nullFloat(k.Preco), nullFloat(k.TaxaEntrega), k.TipoPagamento, k.Tamanho,
		boolInt(k.Entregue), k.Comments["doces"], k.Comments["salgados"], k.Comments["bolos"],
	)
	if err != nil {
		return nil, fmt.Errorf("insert kit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	insertItem := func(kind string, it model.Item, texto string) error {
		_, err := tx.Exec(
			`INSERT INTO kit_items (kit_id, kind, sabor, quantidade, unidade, observacao, texto)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, kind, it.Sabor, it.Quantidade, it.Unidade, it.Observacao, texto,
		)
		return err
	}
	for _, it := range k.Doces {
		if err := insertItem(KindDoces, it, ""); err != nil {
			return nil, fmt.Errorf("insert doce: %w", err)
		}
	}
	for _, it := range k.Salgados {
		if err := insertItem(KindSalgados, it, ""); err != nil {
			return nil, fmt.Errorf("insert salgado: %w", err)
		}
	}
	for _, b := range k.Bolos {
		if err := insertItem(KindBolos, b.Item, b.Texto); err != nil {
			return nil, fmt.Errorf("insert bolo: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// Update overwrites the kit's descriptive fields and bumps atualizado_em.
// Item lists and status flags have their own calls.
func (s *KitStore) Update(id int64, k model.Kit) (*model.Kit, error) {
	_, err := s.db.Exec(
		`UPDATE kits SET nome = ?, cliente = ?, responsavel = ?, revendedor = ?,
			telefone = ?, email = ?, data_evento = ?, hora = ?, tipo = ?, endereco = ?,
			preco = ?, taxa_entrega = ?, tipo_pagamento = ?, tamanho = ?,
			atualizado_em = strftime('%Y-%m-%dT%H:%M:%S', 'now', 'localtime')
		 WHERE id = ?`,
		k.Nome, k.Cliente, k.Responsavel, k.Revendedor,
		k.Telefone, k.Email, k.DataEvento, k.Hora, string(k.Tipo), k.Endereco,
		nullFloat(k.Preco), nullFloat(k.TaxaEntrega), k.TipoPagamento, k.Tamanho,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update kit: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the kit and its items. The items go explicitly rather than
// through the FK cascade, which only fires on connections that have the
// foreign_keys pragma on.
func (s *KitStore) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM kit_items WHERE kit_id = ?`, id); err != nil {
		return fmt.Errorf("delete kit items: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM kits WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete kit: %w", err)
	}
	return tx.Commit()
}

// AddItem appends one item line to a kit collection. texto only applies to
// bolos.
func (s *KitStore) AddItem(kitID int64, kind string, it model.Item, texto string) (*model.Item, string, error) {
	result, err := s.db.Exec(
		`INSERT INTO kit_items (kit_id, kind, sabor, quantidade, unidade, observacao, texto)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		kitID, kind, it.Sabor, it.Quantidade, it.Unidade, it.Observacao, texto,
	)
	if err != nil {
		return nil, "", fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, "", fmt.Errorf("last insert id: %w", err)
	}
	if err := s.touch(kitID); err != nil {
		return nil, "", err
	}
	it.ID = id
	it.KitID = kitID
	return &it, texto, nil
}

// FindItemKit resolves which kit an item of the given kind belongs to; 0
// when the item does not exist.
func (s *KitStore) FindItemKit(itemID int64, kind string) (int64, error) {
	var kitID int64
	err := s.db.QueryRow(
		`SELECT kit_id FROM kit_items WHERE id = ? AND kind = ?`, itemID, kind,
	).Scan(&kitID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find item: %w", err)
	}
	return kitID, nil
}

// UpdateItem overwrites an item line's fields.
func (s *KitStore) UpdateItem(itemID int64, kind string, it model.Item, texto string) error {
	kitID, err := s.FindItemKit(itemID, kind)
	if err != nil {
		return err
	}
	if kitID == 0 {
		return sql.ErrNoRows
	}
	_, err = s.db.Exec(
		`UPDATE kit_items SET sabor = ?, quantidade = ?, unidade = ?, observacao = ?, texto = ?
		 WHERE id = ? AND kind = ?`,
		it.Sabor, it.Quantidade, it.Unidade, it.Observacao, texto, itemID, kind,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return s.touch(kitID)
}

// DeleteItem removes one item line.
func (s *KitStore) DeleteItem(itemID int64, kind string) error {
	kitID, err := s.FindItemKit(itemID, kind)
	if err != nil {
		return err
	}
	if kitID == 0 {
		return sql.ErrNoRows
	}
	if _, err := s.db.Exec(`DELETE FROM kit_items WHERE id = ? AND kind = ?`, itemID, kind); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return s.touch(kitID)
}

// SetStatus flips one per-category completion flag.
func (s *KitStore) SetStatus(kitID int64, kind string, value bool) error {
	var col string
	switch kind {
	case KindDoces:
		col = "status_doces"
	case KindSalgados:
		col = "status_salgados"
	case KindBolos:
		col = "status_bolos"
	default:
		return fmt.Errorf("unknown status kind %q", kind)
	}
	_, err := s.db.Exec(
		`UPDATE kits SET `+col+` = ?, atualizado_em = strftime('%Y-%m-%dT%H:%M:%S', 'now', 'localtime') WHERE id = ?`,
		boolInt(value), kitID,
	)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

// SetEntregue flips the delivered flag. It is independent of the category
// flags on purpose.
func (s *KitStore) SetEntregue(kitID int64, value bool) error {
	_, err := s.db.Exec(
		`UPDATE kits SET entregue = ?, atualizado_em = strftime('%Y-%m-%dT%H:%M:%S', 'now', 'localtime') WHERE id = ?`,
		boolInt(value), kitID,
	)
	if err != nil {
		return fmt.Errorf("set entregue: %w", err)
	}
	return nil
}

// LastID returns the highest kit id ever assigned, 0 when none. The
// registration screen asks for it to pre-fill the next order number.
func (s *KitStore) LastID() (int64, error) {
	var id sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(id) FROM kits`).Scan(&id); err != nil {
		return 0, fmt.Errorf("last id: %w", err)
	}
	return id.Int64, nil
}

func (s *KitStore) touch(kitID int64) error {
	_, err := s.db.Exec(
		`UPDATE kits SET atualizado_em = strftime('%Y-%m-%dT%H:%M:%S', 'now', 'localtime') WHERE id = ?`,
		kitID,
	)
	if err != nil {
		return fmt.Errorf("touch kit: %w", err)
	}
	return nil
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
