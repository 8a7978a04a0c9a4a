// Package schema resolves the columns of an arbitrary sales table to the six
// canonical semantic roles the pipeline operates on. Resolution is a pure
// function of the column list: either auto-matching by normalized header name
// or an explicit caller-supplied mapping.
package schema

import (
	"strings"

	"github.com/salesboard-lab/salesboard/internal/core/errs"
)

// Role is a canonical semantic field every sales dataset must expose
// under some column name.
type Role string

const (
	RoleCountry     Role = "country"
	RoleInvoiceDate Role = "invoice_date"
	RoleQuantity    Role = "quantity"
	RoleUnitPrice   Role = "unit_price"
	RoleCustomerID  Role = "customer_id"
	RoleInvoiceID   Role = "invoice_id"
)

// Roles returns all required roles in canonical order.
func Roles() []Role {
	return []Role{
		RoleCountry,
		RoleInvoiceDate,
		RoleQuantity,
		RoleUnitPrice,
		RoleCustomerID,
		RoleInvoiceID,
	}
}

// Mapping assigns one source column name to every role.
type Mapping map[Role]string

// aliases are the normalized header names accepted per role during
// auto-resolution. The short forms match the canonical retail export
// headers (InvoiceDate, UnitPrice, CustomerID, InvoiceNo).
var aliases = map[Role][]string{
	RoleCountry:     {"country"},
	RoleInvoiceDate: {"invoicedate", "invoice_date"},
	RoleQuantity:    {"quantity"},
	RoleUnitPrice:   {"unitprice", "unit_price"},
	RoleCustomerID:  {"customerid", "customer_id"},
	RoleInvoiceID:   {"invoiceno", "invoice_no", "invoiceid", "invoice_id"},
}

// normalize lowercases a header and strips surrounding whitespace, so
// "Invoice Date " and "invoicedate" compare equal.
func normalize(column string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(column)), " ", "")
}

// Resolve auto-matches columns to roles by normalized name equality.
// Returns a *errs.SchemaError naming every role that has no matching column.
func Resolve(columns []string) (Mapping, error) {
	byNorm := make(map[string]string, len(columns))
	for _, col := range columns {
		norm := normalize(col)
		if _, ok := byNorm[norm]; !ok {
			byNorm[norm] = col
		}
	}

	m := make(Mapping, len(aliases))
	var missing []string
	for _, role := range Roles() {
		found := false
		for _, alias := range aliases[role] {
			if col, ok := byNorm[alias]; ok {
				m[role] = col
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, string(role))
		}
	}

	if len(missing) > 0 {
		return nil, &errs.SchemaError{Roles: missing}
	}
	return m, nil
}

// ResolveExplicit applies a caller-supplied role-to-column mapping. Columns
// need not be named after their role, but every role must map to a column
// that exists in the table.
func ResolveExplicit(columns []string, overrides map[Role]string) (Mapping, error) {
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col] = true
	}

	m := make(Mapping, len(overrides))
	var bad []string
	for _, role := range Roles() {
		col, ok := overrides[role]
		if !ok || col == "" {
			bad = append(bad, string(role))
			continue
		}
		if !present[col] {
			bad = append(bad, string(role))
			continue
		}
		m[role] = col
	}

	if len(bad) > 0 {
		return nil, &errs.SchemaError{
			Roles:  bad,
			Reason: "explicit mapping is missing or names a column not in the table",
		}
	}
	return m, nil
}
