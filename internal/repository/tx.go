package repository

import "github.com/jmoiron/sqlx"

// Tx exposes the write primitives of the progression engine bound to one
// open transaction. Obtain it through Repository.InTx.
type Tx struct {
	tx *sqlx.Tx
}

const dateLayout = "2006-01-02"
