// Package migrations содержит SQL схемы каталога, встроенные в бинарь.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
