package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

const secret = "test-secret"

var operador = pkgjwt.Identity{UserID: "user-1", TenantID: "tenant-1", LocationID: "loc-1", Role: "manager"}

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, operador, "stock-ledger-test", 60)
	require.NoError(t, err)

	id, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, operador, id)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, operador, "stock-ledger-test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_SinTenant(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, pkgjwt.Identity{UserID: "user-1"}, "stock-ledger-test", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err, "un token sin tenant no puede operar el ledger")
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", operador, "x", 60)
	assert.Error(t, err)
}
