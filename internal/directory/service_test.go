package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compdir/internal/config"
	"compdir/internal/record"
)

const sheetCSV = `Comp name,Date,Type,Overview,Details,Link,Rules,Admin notes
"Spring, Open",2024-01-10,Medal,"Front nine <b>shotgun</b> start","Handicap Limit: 28",https://club.example/spring,Strict,Committee only
Autumn Medal,2024-12-25,Medal,Qualifier,&lt;b&gt;encoded&lt;/b&gt; details,,Casual,
Winter Stableford,25/11/2024,Stableford,"line one
line two",,,,
Spring Open,,Medal,duplicate title,,,,
Spring Open,,Medal,another duplicate,,,,
`

func testConfig(url string) config.SheetConfig {
	return config.SheetConfig{
		URL:          url,
		FetchTimeout: 5 * time.Second,
		PageSize:     10,
	}
}

func newLoadedService(t *testing.T, csvBody string) *Service {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Every load carries a cache-busting parameter and no-store directive.
		assert.NotEmpty(t, r.URL.Query().Get("cb"))
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		w.Write([]byte(csvBody))
	}))
	t.Cleanup(srv.Close)

	s, err := NewService(testConfig(srv.URL), record.DefaultFieldMap(), record.DefaultSections(), nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Refresh(context.Background()))
	return s
}

func TestNewService_RejectsBadConfig(t *testing.T) {
	_, err := NewService(testConfig("https://x.example"), record.FieldMap{}, nil, nil)
	assert.Error(t, err)

	_, err = NewService(testConfig("https://x.example"), record.DefaultFieldMap(),
		[]record.Section{{Label: "", Header: "Rules"}}, nil)
	assert.Error(t, err)
}

func TestRefresh_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	s, err := NewService(testConfig(srv.URL), record.DefaultFieldMap(), record.DefaultSections(), nil)
	require.NoError(t, err)

	assert.Error(t, s.Refresh(context.Background()))

	_, err = s.Search(Query{})
	assert.ErrorIs(t, err, ErrNoBatch)
}

func TestRefresh_StaleResponseDiscarded(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	// Pretend a later fetch already applied: the next response is stale.
	s.mu.Lock()
	s.applied = s.seq.Load() + 10
	s.mu.Unlock()

	err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrStaleFetch)

	// The existing batch is untouched.
	res, err := s.Search(Query{})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Meta.Total)
}

func TestBatch_SlugCollisionsSuffixed(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	res, err := s.Search(Query{Text: "duplicate", Mode: "exact"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "spring-open-2", res.Items[0].ID)
	assert.Equal(t, "spring-open-3", res.Items[1].ID)

	// The quoted original keeps the unsuffixed slug.
	d, err := s.Detail("spring-open", Query{})
	require.NoError(t, err)
	assert.Contains(t, d.TitleHTML, "Spring, Open")
}

func TestSearch_ExactKeepsSheetOrder(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	res, err := s.Search(Query{Text: "medal", Mode: "exact"})
	require.NoError(t, err)
	// "Medal" appears in the Type of rows 1, 2, 4, 5 in sheet order.
	require.Len(t, res.Items, 4)
	assert.Equal(t, "spring-open", res.Items[0].ID)
	assert.Equal(t, "autumn-medal", res.Items[1].ID)
}

func TestSearch_TypePreFilter(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	res, err := s.Search(Query{Type: "stableford"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "winter-stableford", res.Items[0].ID)
}

func TestSearch_FuzzyTypo(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	res, err := s.Search(Query{Text: "hanicap", Mode: "fuzzy"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "spring-open", res.Items[0].ID)
	assert.True(t, res.Items[0].FuzzyMatch)
}

func TestSearch_Pagination(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	res, err := s.Search(Query{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, PageMeta{Page: 2, TotalPages: 3, PageSize: 2, Total: 5}, res.Meta)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "winter-stableford", res.Items[0].ID)

	// Out-of-range pages clamp instead of failing.
	res, err = s.Search(Query{Page: 99, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Meta.Page)
	require.Len(t, res.Items, 1)
}

func TestSearch_RenderPayload(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	res, err := s.Search(Query{Text: "shotgun", Mode: "exact"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	item := res.Items[0]
	// Overview keeps safe markup and gains highlight marks.
	assert.Contains(t, item.OverviewHTML, "<b>")
	assert.Contains(t, item.OverviewHTML, "<mark>shotgun</mark>")
	// 2024-01-10 is before the injected now of 2024-06-15.
	assert.True(t, item.Past)
	assert.Equal(t, "https://club.example/spring", item.Link)
}

func TestSearch_PastClassification(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	res, err := s.Search(Query{})
	require.NoError(t, err)

	byID := map[string]Item{}
	for _, it := range res.Items {
		byID[it.ID] = it
	}
	assert.True(t, byID["spring-open"].Past, "2024-01-10 is past")
	assert.False(t, byID["autumn-medal"].Past, "2024-12-25 is upcoming")
	assert.False(t, byID["winter-stableford"].Past, "25/11/2024 is upcoming")
	assert.False(t, byID["spring-open-2"].Past, "no date is never past")
}

func TestDetail_SectionsAndAdminGate(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	d, err := s.Detail("spring-open", Query{})
	require.NoError(t, err)
	labels := sectionLabels(d)
	assert.Contains(t, labels, "Overview")
	assert.Contains(t, labels, "Rules")
	assert.NotContains(t, labels, "Admin notes")

	d, err = s.Detail("spring-open", Query{Admin: true})
	require.NoError(t, err)
	assert.Contains(t, sectionLabels(d), "Admin notes")

	// Empty columns never surface as sections.
	d, err = s.Detail("winter-stableford", Query{Admin: true})
	require.NoError(t, err)
	assert.NotContains(t, sectionLabels(d), "Rules")
}

func TestDetail_EntityEncodedCellDecoded(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	d, err := s.Detail("autumn-medal", Query{})
	require.NoError(t, err)
	assert.Contains(t, d.DetailsHTML, "<b>encoded</b>")
}

func TestDetail_MultilinePlainText(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	d, err := s.Detail("winter-stableford", Query{})
	require.NoError(t, err)
	assert.Contains(t, d.OverviewHTML, "<br")
}

func TestDetail_NotFound(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	_, err := s.Detail("no-such-id", Query{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTypes(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	types, err := s.Types()
	require.NoError(t, err)
	assert.Equal(t, []string{"Medal", "Stableford"}, types)
}

func TestStat(t *testing.T) {
	s := newLoadedService(t, sheetCSV)

	st := s.Stat()
	assert.True(t, st.Loaded)
	assert.Equal(t, 5, st.Rows)
}

func sectionLabels(d Detail) []string {
	var out []string
	for _, sec := range d.Sections {
		out = append(out, sec.Label)
	}
	return out
}
