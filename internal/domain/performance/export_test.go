package performance

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbook(t *testing.T) {
	svc := newTestService(t)
	d := svc.Departments(context.Background(), nil, 30)

	data, err := Workbook(d)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{departmentSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(departmentSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, departmentHeader, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Cardiology", rows[1][1])
	assert.Equal(t, "B+", rows[1][8])
	assert.Equal(t, "Surgery", rows[2][1])

	top, err := f.GetCellValue(summarySheet, "B6")
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", top)
	attention, err := f.GetCellValue(summarySheet, "B7")
	require.NoError(t, err)
	assert.Equal(t, "Surgery", attention)
}

func TestWorkbook_Empty(t *testing.T) {
	svc := newTestService(t, "departments")
	d := svc.Departments(context.Background(), nil, 30)

	data, err := Workbook(d)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(departmentSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
