package view

import (
	"bytes"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/waste-pickup/internal/branding"
	"github.com/nurpe/waste-pickup/internal/model"
)

func requests(n int) []*model.WasteRequest {
	out := make([]*model.WasteRequest, 0, n)
	base := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		out = append(out, &model.WasteRequest{
			ID:        strconv.Itoa(i),
			BackendID: uuid.New(),
			UserType:  model.SubmitterPublic,
			Name:      "Citizen " + strconv.Itoa(i),
			Phone:     "90000000" + strconv.Itoa(i),
			WasteType: "Glass",
			Weight:    2.5,
			Price:     12.5,
			Status:    model.StatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func TestUserCardsLatestFivePublicFirst(t *testing.T) {
	reqs := requests(8)
	reqs[7].UserType = "staff"

	cards := UserCards(reqs, time.UTC)

	require.Len(t, cards, UserViewLimit)
	assert.Equal(t, []string{"6", "5", "4", "3", "2"}, ids(cards))
	for _, c := range cards {
		assert.Empty(t, c.Phone)
		assert.False(t, c.Admin)
	}
}

func TestAdminCardsShowEverythingNewestFirst(t *testing.T) {
	reqs := requests(7)
	reqs[3].UserType = "staff"
	reqs[2].Status = model.StatusCollected

	cards := AdminCards(reqs, time.UTC)

	require.Len(t, cards, 7)
	assert.Equal(t, "6", cards[0].ID)
	assert.Equal(t, "0", cards[6].ID)
	assert.Equal(t, reqs[6].Phone, cards[0].Phone)

	collected := cards[4]
	assert.Equal(t, "Collected", collected.StatusLabel)
	assert.Equal(t, "status-collected", collected.StatusClass)
	assert.False(t, collected.Pending)
	assert.Equal(t, "pending", collected.NextStatus)
	assert.Equal(t, "collected", cards[0].NextStatus)
}

func TestCardFormatting(t *testing.T) {
	req := requests(1)[0]
	req.CreatedAt = time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC)
	ist := time.FixedZone("IST", 5*3600+1800)

	card := UserCards([]*model.WasteRequest{req}, ist)[0]
	assert.Equal(t, "2.5", card.Weight)
	assert.Equal(t, "₹12.50", card.Price)
	assert.Equal(t, "6/1/2026", card.Date)
	assert.Equal(t, "Pending", card.StatusLabel)
}

func TestParsePage(t *testing.T) {
	p, ok := ParsePage("admin")
	assert.True(t, ok)
	assert.Equal(t, PageAdmin, p)
	_, ok = ParsePage("settings")
	assert.False(t, ok)
}

func TestRenderRegions(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	empty, err := r.RenderRegion(RegionUserRequests, PageData{})
	require.NoError(t, err)
	assert.Contains(t, empty, "No requests yet")

	data := PageData{
		Branding:   branding.Default(),
		UserCards:  UserCards(requests(2), time.UTC),
		AdminCards: AdminCards(requests(2), time.UTC),
		LoggedIn:   true,
		Stats:      model.Stats{UniqueUsers: 2, TodayRequests: 1, TotalRecycled: 5},
		Banner:     &Banner{Kind: BannerSuccess, Text: "done"},
		Estimate:   "₹20.00",
	}

	users, err := r.RenderRegion(RegionUserRequests, data)
	require.NoError(t, err)
	assert.Contains(t, users, "Request #1")
	assert.NotContains(t, users, "Mark as Collected")

	admin, err := r.RenderRegion(RegionAdminRequests, data)
	require.NoError(t, err)
	assert.Contains(t, admin, "Mark as Collected")
	assert.Contains(t, admin, data.AdminCards[0].BackendID)

	stats, err := r.RenderRegion(RegionStats, data)
	require.NoError(t, err)
	assert.Contains(t, stats, `<span id="total-recycled">5</span>`)

	banner, err := r.RenderRegion(RegionUserMessage, data)
	require.NoError(t, err)
	assert.Contains(t, banner, "alert-success")

	data.LoggedIn = false
	login, err := r.RenderRegion(RegionAdminRequests, data)
	require.NoError(t, err)
	assert.Contains(t, login, "admin-login-form")
	assert.NotContains(t, login, "Mark as Collected")
}

func TestRenderPageEscapesInput(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	reqs := requests(1)
	reqs[0].Name = "<script>alert(1)</script>"
	var buf bytes.Buffer
	require.NoError(t, r.RenderPage(&buf, PageData{
		Branding:  branding.Default(),
		Page:      PageHome,
		UserCards: UserCards(reqs, time.UTC),
	}))

	html := buf.String()
	assert.Contains(t, html, branding.DefaultSiteTitle)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func ids(cards []Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestNonPendingStatusRendersCollected(t *testing.T) {
	req := requests(1)[0]
	req.Status = "in_progress"

	card := AdminCards([]*model.WasteRequest{req}, time.UTC)[0]
	assert.Equal(t, "Collected", card.StatusLabel)
	assert.Equal(t, "status-collected", card.StatusClass)
	assert.False(t, card.Pending)
}
