package monitor_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"si-notice-monitor/internal/crawler"
	"si-notice-monitor/internal/logger"
	"si-notice-monitor/internal/monitor"
	"si-notice-monitor/internal/notice"
	"si-notice-monitor/internal/notifier"
)

type block struct {
	date, cat, title string
}

func page(blocks ...block) []byte {
	var b strings.Builder
	b.WriteString(`<html><body><ul id="notic_students_list">`)
	for i, bl := range blocks {
		fmt.Fprintf(&b,
			`<li><div><p class="date">%s</p><p class="cat"><strong class="%s">x</strong></p><p class="title"><a href="/n/%d">%s</a></p></div></li>`,
			bl.date, bl.cat, i, bl.title)
	}
	b.WriteString(`</ul></body></html>`)
	return []byte(b.String())
}

type fakeFetcher struct {
	body []byte
	err  error
}

func (f *fakeFetcher) Fetch(context.Context) ([]byte, error) {
	return f.body, f.err
}

type fakeStore struct {
	notices []notice.CategorizedNotice
	loadErr error
	saveErr error
	saves   int
}

func (s *fakeStore) Load(context.Context) ([]notice.CategorizedNotice, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]notice.CategorizedNotice{}, s.notices...), nil
}

func (s *fakeStore) Save(_ context.Context, notices []notice.CategorizedNotice) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.notices = append([]notice.CategorizedNotice{}, notices...)
	return nil
}

func (s *fakeStore) Close() error { return nil }

type fakeNotifier struct {
	sent []notifier.Message
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, msg notifier.Message) error {
	n.sent = append(n.sent, msg)
	return n.err
}

func newMonitor(t *testing.T, body []byte, store *fakeStore, nt *fakeNotifier) *monitor.Monitor {
	t.Helper()

	notified, err := notice.NewCategorySet("sdm", "other")
	require.NoError(t, err)
	return &monitor.Monitor{
		Fetcher:                  &fakeFetcher{body: body},
		Extractor:                crawler.NewExtractor("https://www.si.t.u-tokyo.ac.jp/", notified),
		Store:                    store,
		Notifier:                 nt,
		Formatter:                notifier.NewFormatter("", "", ""),
		Log:                      logger.NewNop(),
		PersistOnDeliveryFailure: true,
	}
}

func titles(notices []notice.CategorizedNotice) []string {
	out := make([]string, 0, len(notices))
	for _, n := range notices {
		out = append(out, n.Title)
	}
	return out
}

func TestRunFirstRun(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	nt := &fakeNotifier{}
	m := newMonitor(t, page(block{"2021.04.09", "sdm", "A"}), store, nt)

	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 1, res.Current)
	assert.Equal(t, 0, res.Prior)
	assert.Equal(t, 1, res.New)
	assert.True(t, res.Notified)
	assert.True(t, res.Saved)

	require.Len(t, nt.sent, 1)
	require.Len(t, nt.sent[0].Attachments, 1)
	att := nt.sent[0].Attachments[0]
	assert.Equal(t, "#004389", att.Color)
	assert.Equal(t, "SDM", att.Fields[1].Value)
	assert.Equal(t, "https://www.si.t.u-tokyo.ac.jp/n/0", att.TitleLink)
	assert.Equal(t, []string{"A"}, titles(store.notices))
}

func TestRunOnlyNewTitles(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	nt := &fakeNotifier{}
	m := newMonitor(t, page(block{"2021.04.09", "sdm", "A"}, block{"2021.04.08", "other", "B"}), store, nt)
	_, err := m.Run(context.Background())
	require.NoError(t, err)

	// B comes back with a new date and category; only C is new.
	m.Fetcher = &fakeFetcher{body: page(
		block{"2021.04.10", "other", "C"},
		block{"2021.04.09", "sdm", "A"},
		block{"2021.04.11", "sdm", "B"},
	)}
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.New)
	require.Len(t, nt.sent, 2)
	require.Len(t, nt.sent[1].Attachments, 1)
	assert.Equal(t, "C", nt.sent[1].Attachments[0].Title)
	assert.Equal(t, []string{"C", "A", "B"}, titles(store.notices))
}

func TestRunNothingNewSkipsNotifyButSaves(t *testing.T) {
	t.Parallel()

	body := page(block{"2021.04.09", "sdm", "A"})
	store := &fakeStore{}
	nt := &fakeNotifier{}
	m := newMonitor(t, body, store, nt)
	_, err := m.Run(context.Background())
	require.NoError(t, err)

	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.New)
	assert.False(t, res.Notified)
	assert.True(t, res.Saved)
	assert.Len(t, nt.sent, 1)
	assert.Equal(t, 2, store.saves)
}

func TestRunEmptyPage(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	require.NoError(t, store.Save(context.Background(), []notice.CategorizedNotice{
		mustNotice(t, "2021.04.09", "/a", "A", "sdm"),
	}))
	nt := &fakeNotifier{}
	m := newMonitor(t, page(), store, nt)

	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, nt.sent, "no notification call at all")
	assert.Equal(t, 1, res.Prior)
	assert.Empty(t, store.notices, "snapshot is a full overwrite")
}

func TestRunPageWithoutListAborts(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	require.NoError(t, store.Save(context.Background(), []notice.CategorizedNotice{
		mustNotice(t, "2021.04.09", "/a", "A", "sdm"),
	}))
	nt := &fakeNotifier{}
	m := newMonitor(t, []byte(`<html><body><h1>Maintenance</h1></body></html>`), store, nt)

	res, err := m.Run(context.Background())
	var perr *notice.ParseError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, notice.KindStructure, perr.Kind)
	assert.False(t, res.Saved)
	assert.Equal(t, 1, store.saves, "only the priming save")
	assert.Equal(t, []string{"A"}, titles(store.notices))
	assert.Empty(t, nt.sent)
}

func TestRunSkipsUnnotifiedCategories(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	nt := &fakeNotifier{}
	m := newMonitor(t, page(block{"2021.04.09", "ee", "E"}, block{"2021.04.08", "psi", "P"}), store, nt)

	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Current)
	assert.Empty(t, nt.sent)
}

func TestRunUnknownCategoryAborts(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	nt := &fakeNotifier{}
	m := newMonitor(t, page(block{"2021.04.09", "sdm", "A"}, block{"2021.04.08", "xyz", "X"}), store, nt)

	_, err := m.Run(context.Background())
	var perr *notice.ParseError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, notice.KindCategory, perr.Kind)
	assert.Empty(t, nt.sent)
	assert.Zero(t, store.saves)
}

func TestRunBadDateAborts(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	m := newMonitor(t, page(block{"2021/04/09", "sdm", "A"}), store, &fakeNotifier{})

	_, err := m.Run(context.Background())
	var perr *notice.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, notice.KindDate, perr.Kind)
	assert.Zero(t, store.saves)
}

func TestRunFetchFailureAborts(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	nt := &fakeNotifier{}
	m := newMonitor(t, nil, store, nt)
	m.Fetcher = &fakeFetcher{err: &crawler.FetchError{URL: "https://x", StatusCode: 503}}

	_, err := m.Run(context.Background())
	var ferr *crawler.FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, 503, ferr.StatusCode)
	assert.Empty(t, nt.sent)
	assert.Zero(t, store.saves)
}

func TestRunLoadFailureAborts(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("disk gone")
	store := &fakeStore{loadErr: loadErr}
	nt := &fakeNotifier{}
	m := newMonitor(t, page(block{"2021.04.09", "sdm", "A"}), store, nt)

	_, err := m.Run(context.Background())
	assert.ErrorIs(t, err, loadErr)
	assert.Empty(t, nt.sent)
	assert.Zero(t, store.saves)
}

func TestRunDeliveryFailure(t *testing.T) {
	t.Parallel()

	deliveryErr := &notifier.DeliveryError{StatusCode: 500}

	t.Run("PersistsByDefault", func(t *testing.T) {
		store := &fakeStore{}
		m := newMonitor(t, page(block{"2021.04.09", "sdm", "A"}), store, &fakeNotifier{err: deliveryErr})

		res, err := m.Run(context.Background())
		assert.ErrorIs(t, err, deliveryErr)
		assert.False(t, res.Notified)
		assert.True(t, res.Saved)
		assert.Equal(t, []string{"A"}, titles(store.notices))
	})

	t.Run("KeepsSnapshotForRetry", func(t *testing.T) {
		store := &fakeStore{}
		nt := &fakeNotifier{err: deliveryErr}
		m := newMonitor(t, page(block{"2021.04.09", "sdm", "A"}), store, nt)
		m.PersistOnDeliveryFailure = false

		res, err := m.Run(context.Background())
		assert.ErrorIs(t, err, deliveryErr)
		assert.False(t, res.Saved)
		assert.Zero(t, store.saves)

		// the next run announces A again
		nt.err = nil
		res, err = m.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.New)
		assert.True(t, res.Notified)
		assert.Len(t, nt.sent, 2)
	})
}

func TestRunSaveFailure(t *testing.T) {
	t.Parallel()

	saveErr := errors.New("read-only file system")
	store := &fakeStore{saveErr: saveErr}
	m := newMonitor(t, page(block{"2021.04.09", "sdm", "A"}), store, &fakeNotifier{})

	res, err := m.Run(context.Background())
	assert.ErrorIs(t, err, saveErr)
	assert.True(t, res.Notified)
	assert.False(t, res.Saved)
}

func mustNotice(t *testing.T, date, link, title, code string) notice.CategorizedNotice {
	t.Helper()

	d, err := notice.ParseDate(date)
	require.NoError(t, err)
	n, err := notice.NewCategorized(d, link, title, code)
	require.NoError(t, err)
	return n
}
