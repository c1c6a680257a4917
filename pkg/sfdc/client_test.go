package sfdc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	accounts []Account
	err      error
	gotSoql  string
}

func (f *fakeClient) Query(_ context.Context, soql string, out any) error {
	f.gotSoql = soql
	if f.err != nil {
		return f.err
	}
	*(out.(*[]Account)) = f.accounts
	return nil
}

func TestFindAccountByDomain_Hit(t *testing.T) {
	t.Parallel()

	fake := &fakeClient{accounts: []Account{{ID: "001", Name: "Acme", Type: "Customer"}}}
	got, err := FindAccountByDomain(context.Background(), fake, "acme.com")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Customer", got.Type)
	assert.Contains(t, fake.gotSoql, "LIKE '%acme.com%'")
}

func TestFindAccountByDomain_Miss(t *testing.T) {
	t.Parallel()

	got, err := FindAccountByDomain(context.Background(), &fakeClient{}, "nobody.example")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindAccountByDomain_QueryError(t *testing.T) {
	t.Parallel()

	fake := &fakeClient{err: errors.New("session expired")}
	_, err := FindAccountByDomain(context.Background(), fake, "acme.com")
	assert.Error(t, err)
}

func TestEscapeSoql(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `o\'brien.com`, escapeSoql("o'brien.com"))
}
