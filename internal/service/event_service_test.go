package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sundaiclub/pitch-service/internal/models"
	"gorm.io/gorm"
)

type fakeMemberRepo struct {
	members map[uint]*models.Member
}

func (f *fakeMemberRepo) FindByID(ctx context.Context, id uint) (*models.Member, error) {
	member, ok := f.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return member, nil
}

func (f *fakeMemberRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Member, error) {
	var members []models.Member
	for _, id := range ids {
		if m, ok := f.members[id]; ok {
			members = append(members, *m)
		}
	}
	return members, nil
}

func newEventFixture() (*fakeEventRepo, *fakeMemberRepo, EventService) {
	events := &fakeEventRepo{events: map[uint]*models.Event{
		eventID: {
			ID:       eventID,
			Title:    "Demo Night",
			StartsAt: time.Date(2026, 9, 7, 18, 0, 0, 0, time.UTC),
			Emcees:   []models.Member{{ID: emceeID}},
		},
	}}
	members := &fakeMemberRepo{members: map[uint]*models.Member{
		adminID: {ID: adminID, Role: models.RoleAdmin},
		emceeID: {ID: emceeID, Role: models.RoleMember},
		leadID:  {ID: leadID, Role: models.RoleMember},
	}}
	return events, members, NewEventService(events, members, nil, nil)
}

func TestEventCreate_AdminOnly(t *testing.T) {
	_, _, svc := newEventFixture()
	event := &models.Event{ID: 2, Title: "Hack Night"}

	assert.ErrorIs(t, svc.Create(context.Background(), lead, event), ErrUnauthorized)
	assert.NoError(t, svc.Create(context.Background(), admin, event))
}

func TestEventGet_NotFound(t *testing.T) {
	_, _, svc := newEventFixture()

	_, err := svc.Get(context.Background(), 42)

	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventUpdate_EmceeMayEdit(t *testing.T) {
	_, _, svc := newEventFixture()
	title := "Demo Night Finale"
	finished := true

	event, err := svc.Update(context.Background(), emcee, eventID, EventPatch{
		Title:      &title,
		IsFinished: &finished,
	})

	assert.NoError(t, err)
	assert.Equal(t, title, event.Title)
	assert.True(t, event.IsFinished)
}

func TestEventUpdate_MemberRejected(t *testing.T) {
	_, _, svc := newEventFixture()
	title := "Hijacked"

	_, err := svc.Update(context.Background(), lead, eventID, EventPatch{Title: &title})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestEventUpdate_PartialPatch(t *testing.T) {
	events, _, svc := newEventFixture()
	reorder := true

	event, err := svc.Update(context.Background(), admin, eventID, EventPatch{AudienceCanReorder: &reorder})

	require.NoError(t, err)
	assert.True(t, event.AudienceCanReorder)
	assert.Equal(t, "Demo Night", events.events[eventID].Title)
}

func TestSetEmcees_ReplacesRoster(t *testing.T) {
	events, _, svc := newEventFixture()

	event, err := svc.SetEmcees(context.Background(), admin, eventID, []uint{leadID})

	require.NoError(t, err)
	assert.True(t, event.HasEmcee(leadID))
	assert.False(t, events.events[eventID].HasEmcee(emceeID))
}

func TestSetEmcees_AdminOnly(t *testing.T) {
	_, _, svc := newEventFixture()

	_, err := svc.SetEmcees(context.Background(), emcee, eventID, []uint{emceeID, leadID})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSetEmcees_UnknownMember(t *testing.T) {
	_, _, svc := newEventFixture()

	_, err := svc.SetEmcees(context.Background(), admin, eventID, []uint{99})

	assert.ErrorIs(t, err, ErrMemberNotFound)
}
