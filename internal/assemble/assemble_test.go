// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/report-extract/internal/section"
	"github.com/pdiddy/report-extract/pkg/types"
)

func loadReport(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "analysis_report.txt"))
	require.NoError(t, err)
	return string(data)
}

func rows(t *testing.T, table *types.Table) [][]string {
	t.Helper()
	require.NotNil(t, table)
	out := make([][]string, table.Len())
	for i := range table.Records {
		out[i] = table.Row(i)
	}
	return out
}

func TestAll(t *testing.T) {
	assemblers, err := All(types.DefaultMarkers())
	require.NoError(t, err)

	var names []string
	for _, a := range assemblers {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{BasicStatsName, PrevalenceName, GenderName, AgeName, EvolutionName}, names)
}

func TestAllRejectsBadPattern(t *testing.T) {
	m := types.DefaultMarkers()
	m.BasicStats = []types.BasicStatField{{Name: "broken", Pattern: `(unclosed`}}
	_, err := All(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	m.BasicStats = []types.BasicStatField{{Name: "nogroup", Pattern: `總影像數: \d+`}}
	_, err = All(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capture group")
}

func TestBasicStats(t *testing.T) {
	a, err := NewBasicStats(types.DefaultMarkers())
	require.NoError(t, err)

	t.Run("full report", func(t *testing.T) {
		out, err := a.Assemble(loadReport(t))
		require.NoError(t, err)
		assert.Equal(t, "report_basic_stats.csv", out.Table.Destination)
		assert.Equal(t, []string{"項目", "數值"}, out.Table.Header())
		assert.Equal(t, [][]string{
			{"總影像數", "112120"},
			{"總病患數", "30805"},
			{"病患平均年齡", "46.90"},
			{"男性數量", "63340"},
			{"女性數量", "48780"},
			{"男女比率 (男:女)", "1.30 : 1"},
		}, rows(t, out.Table))
	})

	t.Run("image and patient totals", func(t *testing.T) {
		out, err := a.Assemble("總影像數: 112120\n總病患數: 30805\n")
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"總影像數", "112120"}, {"總病患數", "30805"}}, rows(t, out.Table))
	})

	t.Run("N lines give N rows", func(t *testing.T) {
		report := "總影像數: 10\n病患平均年齡: 33.50 歲\n男女比率 (男:女): N/A\n\n--- (2) 疾病盛行率排名 ---\n各疾病數量統計:\nMass    3\n"
		out, err := a.Assemble(report)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"總影像數", "10"},
			{"病患平均年齡", "33.50"},
			{"男女比率 (男:女)", "N/A"},
		}, rows(t, out.Table))
	})

	t.Run("no fields", func(t *testing.T) {
		_, err := a.Assemble("nothing to see")
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestPrevalence(t *testing.T) {
	a := NewPrevalence(types.DefaultMarkers())

	t.Run("full report", func(t *testing.T) {
		out, err := a.Assemble(loadReport(t))
		require.NoError(t, err)
		assert.Equal(t, []string{"疾病", "數量", "盛行率(%)"}, out.Table.Header())
		assert.Equal(t, [][]string{
			{"Infiltration", "19894", "17.7432"},
			{"Effusion", "13317", "11.8775"},
			{"Atelectasis", "11559", "10.3095"},
			{"Nodule", "6331", "5.6466"},
			{"Pleural_Thickening", "3385", "3.0191"},
		}, rows(t, out.Table))
		// The "Finding_Labels" header line of each block.
		assert.Len(t, out.Dropped, 2)
	})

	t.Run("inner join drops one-sided diseases", func(t *testing.T) {
		report := "各疾病數量統計:\nInfiltration    19894\nHernia    227\n\n各疾病盛行率 (%):\nInfiltration    17.7432\nEdema    2.0540\n--- (3) 疾病與性別關聯 ---\n"
		out, err := a.Assemble(report)
		require.NoError(t, err)
		require.Equal(t, 1, out.Table.Len())

		count, ok := out.Table.Get(0, "數量")
		require.True(t, ok)
		assert.Equal(t, int64(19894), count.Int)
		pct, ok := out.Table.Get(0, "盛行率(%)")
		require.True(t, ok)
		assert.InDelta(t, 17.7432, pct.Float, 1e-9)
		assert.Equal(t, [][]string{{"Infiltration", "19894", "17.7432"}}, rows(t, out.Table))
	})

	t.Run("name artifact is not data", func(t *testing.T) {
		report := "各疾病數量統計:\nMass    5\nName:  count\n各疾病盛行率 (%):\nMass    1.5\nName:  count\n"
		out, err := a.Assemble(report)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"Mass", "5", "1.5"}}, rows(t, out.Table))
		assert.Empty(t, out.Dropped)
	})

	t.Run("missing percentage block", func(t *testing.T) {
		_, err := a.Assemble("各疾病數量統計:\nMass    5\n")
		assert.ErrorIs(t, err, section.ErrSectionNotFound)
	})

	t.Run("missing counts block", func(t *testing.T) {
		_, err := a.Assemble("各疾病盛行率 (%):\nMass    1.5\n")
		assert.ErrorIs(t, err, section.ErrSectionNotFound)
	})
}

func TestGender(t *testing.T) {
	a := NewGender(types.DefaultMarkers())

	out, err := a.Assemble(loadReport(t))
	require.NoError(t, err)
	assert.Equal(t, "report_disease_gender.csv", out.Table.Destination)
	assert.Equal(t, []string{"疾病", "男性比例 (%)", "女性比例 (%)", "總案例數"}, out.Table.Header())
	got := rows(t, out.Table)
	require.Len(t, got, 6)
	assert.Equal(t, []string{"Infiltration", "56.84", "43.16", "19894"}, got[0])
	assert.Equal(t, []string{"Hernia", "42.29", "57.71", "227"}, got[5])
	assert.Empty(t, out.Dropped)

	t.Run("non-matching rows excluded", func(t *testing.T) {
		report := "各疾病中的性別分佈 (按案例數排序):\n疾病 男性比例 (%) 女性比例 (%) 總案例數\nMass 50.00 50.00 10\n(truncated)\nNodule 40.5 59.5 8\n--- (4)"
		out, err := a.Assemble(report)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"Mass", "50.0", "50.0", "10"},
			{"Nodule", "40.5", "59.5", "8"},
		}, rows(t, out.Table))
		assert.Len(t, out.Dropped, 1)
	})

	t.Run("missing section", func(t *testing.T) {
		_, err := a.Assemble("--- (4) 疾病與年齡關聯 ---\n")
		assert.ErrorIs(t, err, section.ErrSectionNotFound)
	})
}

func TestAge(t *testing.T) {
	a := NewAge(types.DefaultMarkers())

	out, err := a.Assemble(loadReport(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"疾病", "平均年齡", "年齡標準差", "中位數年齡", "總案例數"}, out.Table.Header())
	got := rows(t, out.Table)
	require.Len(t, got, 6)
	assert.Equal(t, []string{"Infiltration", "47.47", "16.28", "49.0", "19894"}, got[0])
	assert.Equal(t, []string{"Pleural_Thickening", "49.89", "14.89", "52.0", "3385"}, got[4])

	t.Run("gender row shape does not fit", func(t *testing.T) {
		report := "各疾病的年齡分佈統計 (按案例數排序):\nheader\nMass 50.00 50.00 10\n"
		out, err := a.Assemble(report)
		require.NoError(t, err)
		assert.Equal(t, 0, out.Table.Len())
		assert.Len(t, out.Dropped, 1)
	})

	t.Run("missing section", func(t *testing.T) {
		_, err := a.Assemble("")
		assert.ErrorIs(t, err, section.ErrSectionNotFound)
	})
}

func TestEvolution(t *testing.T) {
	a := NewEvolution(types.DefaultMarkers())

	t.Run("full report", func(t *testing.T) {
		out, err := a.Assemble(loadReport(t))
		require.NoError(t, err)
		assert.Equal(t, []string{"初始疾病", "新發現的疾病", "發現次數", "佔比 (%)"}, out.Table.Header())
		assert.Equal(t, [][]string{
			{"No Finding", "Infiltration", "3012", "25.1"},
			{"No Finding", "Effusion", "1815", "15.12"},
			{"No Finding", "Atelectasis", "1604", "13.37"},
			{"Effusion", "Infiltration", "410", "30.0"},
			{"Effusion", "Atelectasis", "276", "20.2"},
		}, rows(t, out.Table))
		assert.Equal(t, []string{"Infiltration", "Hernia"}, out.EmptyCohorts)
		assert.Empty(t, out.Dropped)
	})

	t.Run("sentinel cohort and three-row cohort", func(t *testing.T) {
		report := evolutionReport(
			cohort("Nodule", "後續追蹤中未發現新的不同疾病。"),
			cohort("Mass", "新發現的疾病  發現次數  佔比 (%)\nNodule  5  50.00\nEffusion  3  30.00\nEdema  2  20.00"),
		)
		out, err := a.Assemble(report)
		require.NoError(t, err)
		require.Equal(t, 3, out.Table.Len())
		for i := 0; i < out.Table.Len(); i++ {
			v, ok := out.Table.Get(i, "初始疾病")
			require.True(t, ok)
			assert.Equal(t, "Mass", v.Str)
		}
		assert.Equal(t, []string{"Nodule"}, out.EmptyCohorts)
	})

	t.Run("physical order wins over canonical order", func(t *testing.T) {
		report := evolutionReport(
			cohort("Hernia", "新發現的疾病  發現次數  佔比 (%)\nMass  1  100.00"),
			cohort("No Finding", "新發現的疾病  發現次數  佔比 (%)\nNodule  4  100.00"),
		)
		out, err := a.Assemble(report)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"Hernia", "Mass", "1", "100.0"},
			{"No Finding", "Nodule", "4", "100.0"},
		}, rows(t, out.Table))
	})

	t.Run("last cohort without separator", func(t *testing.T) {
		report := "--- (5) 初始疾病演變分析 ---\n--- 初始診斷為 'Edema' 的後續疾病分析 ---\n新發現的疾病  發現次數  佔比 (%)\nMass  2  100.00\n"
		out, err := a.Assemble(report)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"Edema", "Mass", "2", "100.0"}}, rows(t, out.Table))
	})

	t.Run("malformed row dropped", func(t *testing.T) {
		report := evolutionReport(cohort("Mass", "新發現的疾病  發現次數  佔比 (%)\nNodule  5  50.00\nEdema 2 20.00\nEffusion  3  30.00"))
		out, err := a.Assemble(report)
		require.NoError(t, err)
		assert.Equal(t, 2, out.Table.Len())
		require.Len(t, out.Dropped, 1)
		assert.True(t, strings.HasPrefix(out.Dropped[0].Text, "Mass: "))
	})

	t.Run("all cohorts empty", func(t *testing.T) {
		report := evolutionReport(
			cohort("Mass", "資料庫中沒有找到初次診斷僅為此項的案例。"),
			cohort("Edema", "此組病患沒有後續追蹤紀錄可供分析。"),
		)
		_, err := a.Assemble(report)
		assert.ErrorIs(t, err, ErrNoData)
		assert.Contains(t, err.Error(), "2 empty cohort(s)")
	})

	t.Run("missing section", func(t *testing.T) {
		_, err := a.Assemble("--- (4) 疾病與年齡關聯 ---\n")
		assert.ErrorIs(t, err, section.ErrSectionNotFound)
	})
}

func TestMissingMarkersNeverPanic(t *testing.T) {
	assemblers, err := All(types.DefaultMarkers())
	require.NoError(t, err)

	for _, a := range assemblers {
		t.Run(a.Name(), func(t *testing.T) {
			out, err := a.Assemble("an unrelated text file\nwith  two  spaces\n")
			require.Error(t, err)
			assert.True(t, errors.Is(err, section.ErrSectionNotFound) || errors.Is(err, ErrNoData), "err = %v", err)
			assert.Nil(t, out.Table)
		})
	}
}

func cohort(label, body string) string {
	return fmt.Sprintf("--- 初始診斷為 '%s' 的後續疾病分析 ---\n%s\n\n%s\n\n", label, body, strings.Repeat("=", 50))
}

func evolutionReport(cohorts ...string) string {
	return "--- (5) 初始疾病演變分析 ---\n分析說明：測試。\n\n" + strings.Join(cohorts, "")
}
