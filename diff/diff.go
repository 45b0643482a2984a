package diff

import (
	"fmt"
	"sort"

	"github.com/ridoystarlord/custompost/schema"
)

type OperationType string

const (
	// CreateTable: the table is declared but does not exist yet.
	CreateTable OperationType = "CREATE_TABLE"
	// MissingColumn: the table exists but lacks a declared column.
	MissingColumn OperationType = "MISSING_COLUMN"
	// ExtraColumn: the table has a column nobody declared.
	ExtraColumn OperationType = "EXTRA_COLUMN"
	// TypeMismatch: a column exists with a different storage type.
	TypeMismatch OperationType = "TYPE_MISMATCH"
)

// Operation is one difference between a declared table and the live one.
// Dynamic tables are never altered after creation, so apart from CreateTable
// these are reported, not applied.
type Operation struct {
	Type       OperationType
	TableName  string
	ColumnName string
	Declared   schema.StorageType
	Live       schema.StorageType
}

func (o Operation) String() string {
	switch o.Type {
	case CreateTable:
		return fmt.Sprintf("%s: table does not exist", o.TableName)
	case MissingColumn:
		return fmt.Sprintf("%s.%s: declared (%s) but missing", o.TableName, o.ColumnName, o.Declared)
	case ExtraColumn:
		return fmt.Sprintf("%s.%s: present (%s) but not declared", o.TableName, o.ColumnName, o.Live)
	case TypeMismatch:
		return fmt.Sprintf("%s.%s: declared %s, live %s", o.TableName, o.ColumnName, o.Declared, o.Live)
	}
	return string(o.Type)
}

// DeclaredTable is a table as the provisioner would create it.
type DeclaredTable struct {
	Name    string
	Columns []schema.Column
}

// DiffTables compares declared tables with the live catalog. live maps a
// table name to its columns; a missing key means the table does not exist.
// Operations come out in declaration order, columns sorted by name.
func DiffTables(declared []DeclaredTable, live map[string][]schema.ColumnDescriptor) []Operation {
	var ops []Operation

	for _, t := range declared {
		cols, exists := live[t.Name]
		if !exists {
			ops = append(ops, Operation{Type: CreateTable, TableName: t.Name})
			continue
		}

		liveByName := make(map[string]schema.ColumnDescriptor, len(cols))
		for _, c := range cols {
			liveByName[c.Name] = c
		}
		declaredNames := make(map[string]bool, len(t.Columns))

		var tableOps []Operation
		for _, c := range t.Columns {
			declaredNames[c.Name] = true
			lc, ok := liveByName[c.Name]
			if !ok {
				tableOps = append(tableOps, Operation{Type: MissingColumn, TableName: t.Name, ColumnName: c.Name, Declared: c.Type})
				continue
			}
			if !compatible(c.Type, lc.Type) {
				tableOps = append(tableOps, Operation{Type: TypeMismatch, TableName: t.Name, ColumnName: c.Name, Declared: c.Type, Live: lc.Type})
			}
		}
		for _, c := range cols {
			if !declaredNames[c.Name] {
				tableOps = append(tableOps, Operation{Type: ExtraColumn, TableName: t.Name, ColumnName: c.Name, Live: c.Type})
			}
		}

		sort.SliceStable(tableOps, func(i, j int) bool {
			return tableOps[i].ColumnName < tableOps[j].ColumnName
		})
		ops = append(ops, tableOps...)
	}
	return ops
}

// compatible treats the text family as one type, since both dialects read
// long text back as plain text. Primary keys read back as integers.
func compatible(declared, live schema.StorageType) bool {
	if declared == live {
		return true
	}
	if declared == schema.StorageID && live == schema.StorageInteger {
		return true
	}
	text := func(t schema.StorageType) bool {
		return t == schema.StorageText || t == schema.StorageLongText
	}
	return text(declared) && text(live)
}
