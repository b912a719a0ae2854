package view

import (
	"strconv"
	"time"

	"github.com/nurpe/waste-pickup/internal/model"
	"github.com/nurpe/waste-pickup/internal/pricing"
)

// UserViewLimit caps the number of cards in the public "recent requests" list.
const UserViewLimit = 5

type Card struct {
	ID          string
	BackendID   string
	Name        string
	Phone       string
	Area        string
	Address     string
	WasteType   string
	Weight      string
	Price       string
	Date        string
	StatusLabel string
	StatusClass string
	Pending     bool
	NextStatus  string
	Admin       bool
}

// UserCards shows the latest public requests, most recent first.
func UserCards(requests []*model.WasteRequest, loc *time.Location) []Card {
	cards := make([]Card, 0, UserViewLimit)
	for i := len(requests) - 1; i >= 0 && len(cards) < UserViewLimit; i-- {
		req := requests[i]
		if req.UserType != model.SubmitterPublic {
			continue
		}
		cards = append(cards, newCard(req, loc, false))
	}
	return cards
}

// AdminCards shows every request, most recent first, with contact details and actions.
func AdminCards(requests []*model.WasteRequest, loc *time.Location) []Card {
	cards := make([]Card, 0, len(requests))
	for i := len(requests) - 1; i >= 0; i-- {
		cards = append(cards, newCard(requests[i], loc, true))
	}
	return cards
}

func newCard(req *model.WasteRequest, loc *time.Location, admin bool) Card {
	if loc == nil {
		loc = time.Local
	}
	card := Card{
		ID:          req.ID,
		BackendID:   req.BackendID.String(),
		Name:        req.Name,
		Area:        req.Area,
		Address:     req.Address,
		WasteType:   req.WasteType,
		Weight:      FormatWeight(req.Weight),
		Price:       pricing.FormatAmount(req.Price),
		Date:        FormatDate(req.CreatedAt, loc),
		StatusLabel: req.Status.Label(),
		StatusClass: statusClass(req.Status),
		Pending:     req.Status == model.StatusPending,
		NextStatus:  string(req.Status.Toggle()),
		Admin:       admin,
	}
	if admin {
		card.Phone = req.Phone
	}
	return card
}

func statusClass(s model.Status) string {
	if s == model.StatusPending {
		return "status-pending"
	}
	return "status-collected"
}

func FormatWeight(weight float64) string {
	return strconv.FormatFloat(weight, 'f', -1, 64)
}

// FormatDate renders a day/month/year date without zero padding, as Indian locales do.
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("2/1/2006")
}
