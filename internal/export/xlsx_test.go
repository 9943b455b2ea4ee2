package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/spendwatch/awardfeed/internal/tabular"
)

func TestWorkbookLayout(t *testing.T) {
	t.Parallel()

	tab := tabular.Table{
		Columns: []string{"piid_or_fain", "recipient_name"},
		Rows: []tabular.Row{
			{"piid_or_fain": "P100", "recipient_name": "ACME"},
			{"piid_or_fain": "F200", "recipient_name": "Widgets Inc"},
		},
	}
	updated := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	w := NewWriter(zap.NewNop())
	f, err := w.Workbook(tab, updated)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	v, err := f.GetCellValue("Awards", "A1")
	require.NoError(t, err)
	require.Equal(t, "piid_or_fain", v)

	v, err = f.GetCellValue("Awards", "B3")
	require.NoError(t, err)
	require.Equal(t, "Widgets Inc", v)

	v, err = f.GetCellValue("Info", "B1")
	require.NoError(t, err)
	require.Equal(t, "2025-03-04T05:06:07Z", v)
}

func TestWriteFileRoundTrip(t *testing.T) {
	t.Parallel()

	tab := tabular.Table{
		Columns: []string{"award_type"},
		Rows:    []tabular.Row{{"award_type": "grant"}},
	}
	path := filepath.Join(t.TempDir(), "awards.xlsx")

	w := NewWriter(nil)
	require.NoError(t, w.WriteFile(path, tab, time.Now()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	v, err := f.GetCellValue("Awards", "A2")
	require.NoError(t, err)
	require.Equal(t, "grant", v)
}
