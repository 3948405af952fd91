package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

type fakeAdmin struct {
	calls []domain.AdminAction
}

func (f *fakeAdmin) Admin(_ context.Context, action domain.AdminAction) (domain.AdminResult, error) {
	f.calls = append(f.calls, action)
	return domain.AdminResult{Message: "ok"}, nil
}

func testCLI(input string) (*cli, *bytes.Buffer) {
	var out bytes.Buffer
	return &cli{out: &out, in: bufio.NewReader(strings.NewReader(input)), logger: zerolog.Nop()}, &out
}

func TestConfirmAdmin_ResetAllNeedsTwoConfirmationsAndPhrase(t *testing.T) {
	c, _ := testCLI("y\nyes please\n")
	api := &fakeAdmin{}
	flow := app.NewAdminFlow(api, nil, zerolog.Nop())

	req, err := confirmAdmin(c, flow, domain.AdminResetAll, adminOpts{})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if req.State != app.AdminConfirmed {
		t.Fatalf("state: want %s, got %s", app.AdminConfirmed, req.State)
	}
	if req.Confirmations != 2 {
		t.Fatalf("confirmations: want 2, got %d", req.Confirmations)
	}
	if len(api.calls) != 0 {
		t.Fatalf("api must not be called before Execute, got %v", api.calls)
	}
}

func TestConfirmAdmin_RefusalCancels(t *testing.T) {
	c, _ := testCLI("n\n")
	flow := app.NewAdminFlow(&fakeAdmin{}, nil, zerolog.Nop())

	req, err := confirmAdmin(c, flow, domain.AdminDeleteFiles, adminOpts{})
	if !errors.Is(err, errCancelled) {
		t.Fatalf("err: want errCancelled, got %v", err)
	}
	got, err := flow.Get(req.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != app.AdminCancelled {
		t.Fatalf("state: want %s, got %s", app.AdminCancelled, got.State)
	}
}

func TestConfirmAdmin_WrongPhraseCancels(t *testing.T) {
	c, _ := testCLI("")
	flow := app.NewAdminFlow(&fakeAdmin{}, nil, zerolog.Nop())

	req, err := confirmAdmin(c, flow, domain.AdminResetAll, adminOpts{Yes: true, Phrase: "no"})
	if !errors.Is(err, app.ErrConfirmationPhrase) {
		t.Fatalf("err: want ErrConfirmationPhrase, got %v", err)
	}
	got, _ := flow.Get(req.ID)
	if got.State != app.AdminCancelled {
		t.Fatalf("state: want %s, got %s", app.AdminCancelled, got.State)
	}
}

func TestConfirmAdmin_YesFlagSkipsPrompt(t *testing.T) {
	c, out := testCLI("")
	flow := app.NewAdminFlow(&fakeAdmin{}, nil, zerolog.Nop())

	req, err := confirmAdmin(c, flow, domain.AdminResetSyncHistory, adminOpts{Yes: true})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if req.State != app.AdminConfirmed {
		t.Fatalf("state: want %s, got %s", app.AdminConfirmed, req.State)
	}
	if out.Len() != 0 {
		t.Fatalf("no prompt expected, got %q", out.String())
	}
}

func TestStatusRows_CrossesOwnersAndTypes(t *testing.T) {
	ov := app.Overview{
		Provider: domain.ProviderXtream,
		Subscriptions: []domain.Subscription{
			{ID: 1, Name: "home", IsActive: true},
			{ID: 2, Name: "off"},
		},
		Statuses: []domain.SyncStatus{
			{OwnerID: 1, Type: domain.Series, State: domain.SyncRunning},
		},
	}
	rows := statusRows(ov, nil)
	if len(rows) != 4 {
		t.Fatalf("rows: want 4, got %d", len(rows))
	}
	if rows[1].Type != domain.Series || rows[1].State != domain.SyncRunning {
		t.Fatalf("row 1: want running series, got %+v", rows[1])
	}
	if rows[2].State != domain.SyncIdle || rows[2].Active {
		t.Fatalf("row 2: want idle inactive, got %+v", rows[2])
	}
}

func TestStatusRows_FallsBackToStatusesWhenSourcesFail(t *testing.T) {
	ov := app.Overview{
		Provider:     domain.ProviderM3U,
		SourcesError: "boom",
		Statuses:     []domain.SyncStatus{{OwnerID: 9, Type: domain.Movies, State: domain.SyncFailed}},
	}
	rows := statusRows(ov, nil)
	if len(rows) != 1 || rows[0].OwnerID != 9 || rows[0].State != domain.SyncFailed {
		t.Fatalf("rows: want one failed row for owner 9, got %+v", rows)
	}
}

func TestM3UAdd_FileSource(t *testing.T) {
	cmd := m3uAddCmd{Name: "local", File: "/data/list.m3u"}
	src := cmd.source()
	if src.SourceType != domain.M3USourceFile || src.FilePath != "/data/list.m3u" {
		t.Fatalf("source: want file source, got %+v", src)
	}
	if !src.IsActive {
		t.Fatalf("source: want active by default")
	}
}

func TestSubsForm_ApplyKeepsUnsetFields(t *testing.T) {
	sub := domain.Subscription{ID: 3, Name: "old", Username: "u", Password: "p", MoviesDir: "/m"}
	subsForm{Name: "new", Password: "q"}.apply(&sub)
	if sub.Name != "new" || sub.Password != "q" {
		t.Fatalf("apply: want updated name/password, got %+v", sub)
	}
	if sub.Username != "u" || sub.MoviesDir != "/m" {
		t.Fatalf("apply: unset fields must be kept, got %+v", sub)
	}
}
