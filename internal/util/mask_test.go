package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	tests := map[string]string{
		"":                  "",
		"ab":                "***",
		"abcdef":            "a…f",
		" Ada@Example.COM ": "a…@e….com",
		"a@b.io":            "a@b.io",
	}
	for in, want := range tests {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "postgres://auth:xxxxx@db:5432/auth?sslmode=disable",
		MaskDSN("postgres://auth:s3cret@db:5432/auth?sslmode=disable"))
	assert.Equal(t, "postgres://auth@db/auth", MaskDSN("postgres://auth@db/auth"))
	assert.Equal(t, "***", MaskDSN("host=db user=auth password=s3cret"))
	assert.Equal(t, "", MaskDSN(""))
}
