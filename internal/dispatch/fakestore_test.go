package dispatch

import (
	"context"
	"sort"
	"sync"
	"time"

	"crm-server/internal/store"

	"github.com/google/uuid"
)

// fakeStore is an in-memory DispatchStore with the same conditional-update
// semantics as the SQL store.
type fakeStore struct {
	mu         sync.Mutex
	campaigns  map[uuid.UUID]*store.Campaign
	recipients map[uuid.UUID][]*store.CampaignRecipient
	failExpire map[uuid.UUID]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		campaigns:  map[uuid.UUID]*store.Campaign{},
		recipients: map[uuid.UUID][]*store.CampaignRecipient{},
		failExpire: map[uuid.UUID]error{},
	}
}

func (f *fakeStore) addCampaign(c store.Campaign, phones ...string) store.Campaign {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	for i, phone := range phones {
		f.recipients[c.ID] = append(f.recipients[c.ID], &store.CampaignRecipient{
			ID:         uuid.New(),
			CampaignID: c.ID,
			Phone:      phone,
			Message:    "message for " + phone,
			Position:   i,
			Status:     store.RecipientStatusPending,
		})
	}
	c.TotalRecipients = len(phones)
	f.campaigns[c.ID] = &c
	return c
}

func (f *fakeStore) campaign(id uuid.UUID) store.Campaign {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.campaigns[id]
}

func (f *fakeStore) recipientList(campaignID uuid.UUID) []store.CampaignRecipient {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.CampaignRecipient, 0, len(f.recipients[campaignID]))
	for _, r := range f.recipients[campaignID] {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func timePtr(t time.Time) *time.Time { return &t }

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (f *fakeStore) ActivateDueCampaigns(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for _, c := range f.campaigns {
		if c.Status == "scheduled" && c.ScheduledAt != nil && !c.ScheduledAt.After(now) {
			c.Status = "running"
			c.StartedAt = timePtr(now)
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (f *fakeStore) ListCampaignsByStatus(_ context.Context, status string) ([]store.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Campaign
	for _, c := range f.campaigns {
		if c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) ReserveDispatchSlot(_ context.Context, campaignID uuid.UUID, prev *time.Time, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.campaigns[campaignID]
	if c == nil || c.Status != "running" || !sameInstant(c.LastSentAt, prev) {
		return false, nil
	}
	c.LastSentAt = timePtr(now)
	return true, nil
}

func (f *fakeStore) ClaimNextRecipient(_ context.Context, campaignID uuid.UUID, now time.Time) (store.CampaignRecipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var next *store.CampaignRecipient
	for _, r := range f.recipients[campaignID] {
		if r.Status != store.RecipientStatusPending || r.ClaimedAt != nil {
			continue
		}
		if next == nil || r.Position < next.Position {
			next = r
		}
	}
	if next == nil {
		return store.CampaignRecipient{}, store.ErrNotFound
	}
	next.ClaimedAt = timePtr(now)
	return *next, nil
}

func (f *fakeStore) CountPendingRecipients(_ context.Context, campaignID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.recipients[campaignID] {
		if r.Status == store.RecipientStatusPending {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) FinalizeRecipient(_ context.Context, params store.FinalizeRecipientParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recipients[params.CampaignID] {
		if r.ID != params.RecipientID {
			continue
		}
		if r.Status != store.RecipientStatusPending {
			return false, nil
		}
		r.Status = params.Status
		if params.ErrorMessage != nil {
			msg := store.TruncateErrorMessage(*params.ErrorMessage)
			r.ErrorMessage = &msg
		}
		c := f.campaigns[params.CampaignID]
		if params.Status == store.RecipientStatusSent {
			r.SentAt = timePtr(params.Now)
			c.SentCount++
		} else {
			c.FailedCount++
		}
		return true, nil
	}
	return false, nil
}

func (f *fakeStore) ExpireStaleClaims(_ context.Context, campaignID uuid.UUID, cutoff time.Time, message string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failExpire[campaignID]; err != nil {
		return 0, err
	}
	n := 0
	for _, r := range f.recipients[campaignID] {
		if r.Status == store.RecipientStatusPending && r.ClaimedAt != nil && r.ClaimedAt.Before(cutoff) {
			r.Status = store.RecipientStatusFailed
			msg := message
			r.ErrorMessage = &msg
			n++
		}
	}
	f.campaigns[campaignID].FailedCount += n
	return n, nil
}

func (f *fakeStore) TransitionCampaignStatus(_ context.Context, campaignID uuid.UUID, from []string, to string) (store.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.campaigns[campaignID]
	if c == nil {
		return store.Campaign{}, store.ErrStatusConflict
	}
	for _, s := range from {
		if c.Status == s {
			c.Status = to
			return *c, nil
		}
	}
	return store.Campaign{}, store.ErrStatusConflict
}

type sendCall struct {
	Instance string
	Phone    string
	Text     string
	Media    *Media
}

// fakeGateway records every send and fails for configured phones.
type fakeGateway struct {
	mu      sync.Mutex
	calls   []sendCall
	failFor map[string]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failFor: map[string]error{}}
}

func (g *fakeGateway) SendText(_ context.Context, instance, phone, text string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, sendCall{Instance: instance, Phone: phone, Text: text})
	if err := g.failFor[phone]; err != nil {
		return "", err
	}
	return "msg-" + phone, nil
}

func (g *fakeGateway) SendMedia(_ context.Context, instance, phone string, media Media, caption string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m := media
	g.calls = append(g.calls, sendCall{Instance: instance, Phone: phone, Text: caption, Media: &m})
	if err := g.failFor[phone]; err != nil {
		return "", err
	}
	return "msg-" + phone, nil
}

func (g *fakeGateway) sent() []sendCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sendCall(nil), g.calls...)
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []uuid.UUID
}

func (n *recordingNotifier) CampaignCompleted(_ context.Context, c store.Campaign) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, c.ID)
	return nil
}
