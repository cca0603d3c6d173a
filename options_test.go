package fdw_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fdw "github.com/wrapgate/postgres-fdw"
	"github.com/wrapgate/postgres-fdw/fdwtest"
	"github.com/wrapgate/postgres-fdw/host"
)

func TestOptionsFromRelation(t *testing.T) {
	rel := fdwtest.TextRelation(42, "public", "users", "id", "name", "email")
	catalog := &fdwtest.Catalog{
		Server: fdwtest.Defs(map[string]string{"endpoint": "local", "mode": "rw"}),
		Table:  fdwtest.Defs(map[string]string{"table_option": "1"}),
	}

	opts, err := fdw.OptionsFromRelation(catalog, rel)
	require.NoError(t, err)
	assert.Equal(t, "users", opts.TableName)
	assert.Equal(t, "public", opts.TableNamespace)
	assert.Equal(t, map[string]string{"endpoint": "local", "mode": "rw"}, map[string]string(opts.ServerOpts))
	assert.Equal(t, map[string]string{"table_option": "1"}, map[string]string(opts.TableOpts))
}

func TestOptionsFromRelationAbsentLists(t *testing.T) {
	rel := fdwtest.TextRelation(42, "public", "users", "id")

	opts, err := fdw.OptionsFromRelation(&fdwtest.Catalog{}, rel)
	require.NoError(t, err)
	assert.Empty(t, opts.ServerOpts)
	assert.Empty(t, opts.TableOpts)
}

func TestOptionsDuplicateKeysLastWriteWins(t *testing.T) {
	rel := fdwtest.TextRelation(42, "public", "users", "id")
	catalog := &fdwtest.Catalog{
		Table: []host.OptionDef{
			{Name: []byte("mode"), Value: []byte("first")},
			{Name: []byte("mode"), Value: []byte("second")},
		},
	}

	opts, err := fdw.OptionsFromRelation(catalog, rel)
	require.NoError(t, err)
	assert.Equal(t, "second", opts.TableOpts["mode"])
}

func TestOptionsMalformedTextIsFatal(t *testing.T) {
	rel := fdwtest.TextRelation(42, "public", "users", "id")

	tests := map[string]struct {
		defs []host.OptionDef
		code string
	}{
		"invalid option name": {
			defs: []host.OptionDef{{Name: []byte{0xff, 0xfe}, Value: []byte("v")}},
			code: fdw.ErrcodeFdwInvalidOptionName,
		},
		"invalid option value": {
			defs: []host.OptionDef{{Name: []byte("key"), Value: []byte{0xff}}},
			code: fdw.ErrcodeFdwInvalidStringFormat,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			catalog := &fdwtest.Catalog{Table: test.defs}
			_, err := fdw.OptionsFromRelation(catalog, rel)
			var fdwErr *fdw.Error
			require.True(t, errors.As(err, &fdwErr))
			assert.Equal(t, test.code, fdwErr.Code)
		})
	}
}
