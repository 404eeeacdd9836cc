package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rdservicos/portal/internal/catalog"
)

const sampleServices = `
IRPF:
  allowed_types: [pdf, xlsx, csv]
  folder_key: [cpf, ano]
  fields:
    - name: nome
      label: Nome Completo
      required: true
    - name: cpf
      label: CPF
      required: true
    - name: ano
      label: Ano de Referência
      required: true
BI:
  allowed_types: [csv, xlsx]
  fields:
    - name: descricao
      label: Descrição do Pedido
      required: true
`

func writeServices(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndLookup(t *testing.T) {
	cat := catalog.Load(writeServices(t, sampleServices))
	require.Equal(t, 2, cat.Len())

	irpf, ok := cat.Lookup("IRPF")
	require.True(t, ok)
	require.Equal(t, "IRPF", irpf.ID)
	require.Equal(t, []string{"cpf", "ano"}, irpf.FolderKey)
	require.Len(t, irpf.RequiredFields(), 3)
	require.True(t, irpf.AllowsExtension("pdf"))
	require.True(t, irpf.AllowsExtension("PDF"))
	require.False(t, irpf.AllowsExtension("exe"))

	_, ok = cat.Lookup("Juridico")
	require.False(t, ok)

	list := cat.List()
	require.Equal(t, "BI", list[0].ID)
	require.Equal(t, "IRPF", list[1].ID)
}

func TestLoadDegradesToEmptyCatalog(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cat := catalog.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Zero(t, cat.Len())
		_, ok := cat.Lookup("IRPF")
		require.False(t, ok)
	})

	t.Run("malformed file", func(t *testing.T) {
		cat := catalog.Load(writeServices(t, "IRPF: [not, a, mapping"))
		require.Zero(t, cat.Len())
	})
}
