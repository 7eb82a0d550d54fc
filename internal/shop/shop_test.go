package shop

import (
	"context"
	"testing"

	"ss-uniforms/internal/database/dbtest"
	"ss-uniforms/internal/models"
	"ss-uniforms/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFallsBackToDefaults(t *testing.T) {
	svc := NewService(dbtest.Open(t))

	info, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultID, info.ID)
	assert.Equal(t, "SS Uniforms", info.Name)
	assert.Equal(t, "9:00 AM - 7:00 PM", info.BusinessHours.Weekdays)
}

func TestUpdateCreatesThenOverwrites(t *testing.T) {
	svc := NewService(dbtest.Open(t))
	ctx := notify.WithCollector(context.Background())

	first, err := svc.Update(ctx, Input{Name: "SS Uniforms Chhawla", Phone: "9876543210"})
	require.NoError(t, err)
	assert.NotEqual(t, DefaultID, first.ID)
	assert.Empty(t, first.Images)

	second, err := svc.Update(ctx, Input{Name: "SS Uniforms", Images: []string{"/uploads/front.jpg"}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	info, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SS Uniforms", info.Name)
	assert.Equal(t, []string{"/uploads/front.jpg"}, info.Images)
	assert.Equal(t, 28.560651, info.Location.Lat)

	var rows int64
	svc.DB.Model(&models.ShopInfo{}).Count(&rows)
	assert.Equal(t, int64(1), rows)

	notes := notify.Drain(ctx)
	require.Len(t, notes, 2)
	assert.Equal(t, "Shop information updated successfully", notes[1].Message)
}
