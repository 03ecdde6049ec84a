package database

import (
	"fmt"
	"regexp"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ValidateTableName refuse tout nom de table qui ne peut pas être interpolé tel quel dans du SQL
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}
