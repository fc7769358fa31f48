package dialect

import (
	"fmt"

	"github.com/huangjunwen/cdcconv/column"
)

func builtinRules() map[ruleKey]Rule {
	ret := map[ruleKey]Rule{}
	for _, table := range []struct {
		dialect Dialect
		rules   map[column.LogicalType]Rule
	}{
		{MySQL, mysqlRules()},
		{MariaDB, mariadbRules()},
		{PostgreSQL, postgresRules()},
		{SQLite, sqliteRules()},
	} {
		for lt, rule := range table.rules {
			ret[ruleKey{lt, table.dialect}] = rule
		}
	}
	return ret
}

// fixed renders a type without parameters.
func fixed(name string) DeclarationFunc {
	return func(TypeSpec) string {
		return name
	}
}

// sized renders name(size), or name alone if there is no size.
func sized(name string) DeclarationFunc {
	return func(spec TypeSpec) string {
		if spec.Size <= 0 {
			return name
		}
		return fmt.Sprintf("%s(%d)", name, spec.Size)
	}
}

// sizedOr renders sizedName(size), or unsizedName if there is no size.
func sizedOr(sizedName, unsizedName string) DeclarationFunc {
	return func(spec TypeSpec) string {
		if spec.Size <= 0 {
			return unsizedName
		}
		return fmt.Sprintf("%s(%d)", sizedName, spec.Size)
	}
}

// bindWith wraps the bind parameter in a function call or cast.
func bindWith(format string) BindingFunc {
	return func(column.Descriptor, interface{}) string {
		return format
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
