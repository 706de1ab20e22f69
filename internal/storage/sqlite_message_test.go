package storage

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/smsdesk/sms-contact-service/internal/model"
)

func TestMessageOrderingByDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	contactID, err := repo.SaveContact(ctx, model.Contact{Firstname: "Ada", TelNumber: "0611111111"})
	require.NoError(t, err)

	texts := []string{"first", "second", "third"}
	for i, text := range texts {
		_, err := repo.SaveMessage(ctx, model.Message{
			ContactID: contactID,
			Msg:       text,
			Date:      int64(1000 * (i + 1)),
		})
		require.NoError(t, err)
	}

	messages, err := repo.FindMessagesByContactID(ctx, contactID)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	sort.Slice(messages, func(i, j int) bool { return messages[i].Date < messages[j].Date })
	for i, text := range texts {
		assert.Equal(t, text, messages[i].Msg)
	}
}

func TestMessagesScopedToContact(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	idA, err := repo.SaveContact(ctx, model.Contact{Firstname: "Ada", TelNumber: "0611111111"})
	require.NoError(t, err)
	idB, err := repo.SaveContact(ctx, model.Contact{Firstname: "Bob", TelNumber: "0622222222"})
	require.NoError(t, err)

	// Interleave inserts across both contacts.
	for i := 0; i < 6; i++ {
		target := idA
		if i%2 == 1 {
			target = idB
		}
		_, err := repo.SaveMessage(ctx, model.Message{
			ContactID: target,
			Msg:       "msg",
			Date:      int64(100 * (i + 1)),
		})
		require.NoError(t, err)
	}

	forA, err := repo.FindMessagesByContactID(ctx, idA)
	require.NoError(t, err)
	forB, err := repo.FindMessagesByContactID(ctx, idB)
	require.NoError(t, err)

	assert.Len(t, forA, 3)
	assert.Len(t, forB, 3)
	for _, m := range forA {
		assert.Equal(t, idA, m.ContactID)
	}
	for _, m := range forB {
		assert.Equal(t, idB, m.ContactID)
	}
}

func TestCreateMessageWithContactKnownNumber(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	contactID, err := repo.SaveContact(ctx, model.Contact{Firstname: "Ada", TelNumber: "0611111111"})
	require.NoError(t, err)

	contact, created, err := repo.CreateMessageWithContact(ctx, "0611111111", model.Message{Msg: "hello", Date: 1000})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, contactID, contact.ID)
	assert.Equal(t, "Ada", contact.Firstname)

	messages, err := repo.FindMessagesByContactID(ctx, contactID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Msg)
	assert.False(t, messages[0].IsSend)
}

func TestCreateMessageWithContactUnknownNumber(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	contact, created, err := repo.CreateMessageWithContact(ctx, "0699999999", model.Message{Msg: "who dis", Date: 2000})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Greater(t, contact.ID, int64(0))
	assert.Equal(t, "0699999999", contact.Firstname)
	assert.Equal(t, "0699999999", contact.TelNumber)

	// A second message from the same sender reuses the placeholder.
	again, created, err := repo.CreateMessageWithContact(ctx, "0699999999", model.Message{Msg: "still me", Date: 3000})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, contact.ID, again.ID)

	contacts, err := repo.FindAllContacts(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 1)

	messages, err := repo.FindMessagesByContactID(ctx, contact.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}
