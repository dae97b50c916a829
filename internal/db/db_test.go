package db

import (
	"context"
	"strings"
	"testing"

	"farm-credit/internal/config"
)

func TestSchemaSQLUsesFeatureDimensions(t *testing.T) {
	ddl := SchemaSQL(27)
	if !strings.Contains(ddl, "vector(27)") {
		t.Fatalf("expected vector(27) column, got:\n%s", ddl)
	}
	if !strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS predictions") {
		t.Fatalf("expected predictions table DDL")
	}
}

func TestEnsureSchemaRejectsInvalidDimensions(t *testing.T) {
	if err := EnsureSchema(context.Background(), nil, 0); err == nil {
		t.Fatalf("expected error for zero dimensions")
	}
}

func TestNewPoolRejectsInvalidURL(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "postgres://%zz"}
	if _, err := NewPool(context.Background(), cfg); err == nil {
		t.Fatalf("expected parse error for invalid database url")
	}
}
