// Package memberquery runs the filtered, rank-sorted, paginated member
// listing and the member stats.
package memberquery

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/phearom922/wall-of-fame/internal/app/system/memberstatus"
	"github.com/phearom922/wall-of-fame/internal/app/system/paging"
	"github.com/phearom922/wall-of-fame/internal/app/system/rank"
	"github.com/phearom922/wall-of-fame/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Sort keys accepted in orderBy.
const (
	OrderByPin        = "pin"
	OrderByMemberName = "memberName"
	OrderByCreatedAt  = "createdAt"
	OrderByStartPin   = "startPin"
	OrderByEndPin     = "endPin"
)

// rankField is the computed field holding each member's pin rank.
const rankField = "pin_rank"

var dateFields = map[string]string{
	OrderByCreatedAt: "created_at",
	OrderByStartPin:  "start_pin",
	OrderByEndPin:    "end_pin",
}

// Params holds the listing inputs.
type Params struct {
	Status  string // "active", "expired" or anything else for no filter
	Pin     string
	Q       string
	Enabled *bool
	Page    paging.Request
	OrderBy string
	Desc    bool
}

// ParseParams reads listing inputs from the query string.
func ParseParams(r *http.Request) Params {
	p := Params{
		Status:  query.Get(r, "status"),
		Pin:     query.Get(r, "pin"),
		Q:       query.Get(r, "q"),
		Page:    paging.Parse(r),
		OrderBy: query.Get(r, "orderBy"),
		Desc:    strings.EqualFold(query.Get(r, "order"), "desc"),
	}
	if p.OrderBy == "" {
		p.OrderBy = OrderByPin
	}
	if v, err := strconv.ParseBool(query.Get(r, "enabled")); err == nil {
		p.Enabled = &v
	}
	return p
}

// Filter builds the $match stage conditions.
func Filter(p Params, now time.Time) bson.M {
	f := bson.M{}
	if cond, ok := memberstatus.Filter(p.Status, now); ok {
		f["end_pin"] = cond
	}
	if p.Pin != "" {
		f["pin"] = p.Pin
	}
	if q := strings.TrimSpace(p.Q); q != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
		f["$or"] = bson.A{
			bson.M{"member_name": re},
			bson.M{"member_id": re},
		}
	}
	if p.Enabled != nil {
		f["enabled"] = *p.Enabled
	}
	return f
}

// Sort returns the sort keys for p. _id is always the last key so that
// pages never overlap when earlier keys tie.
func Sort(p Params) bson.D {
	dir := 1
	if p.Desc {
		dir = -1
	}

	var keys bson.D
	switch {
	case p.OrderBy == OrderByPin:
		keys = bson.D{
			{Key: rankField, Value: dir},
			{Key: "pin_order", Value: dir},
			{Key: "member_name", Value: 1},
		}
	case p.OrderBy == OrderByMemberName:
		keys = bson.D{{Key: "member_name", Value: dir}}
	case dateFields[p.OrderBy] != "":
		keys = bson.D{{Key: dateFields[p.OrderBy], Value: dir}}
	default:
		keys = bson.D{
			{Key: rankField, Value: 1},
			{Key: "pin_order", Value: 1},
			{Key: "member_name", Value: 1},
		}
	}
	return append(keys, bson.E{Key: "_id", Value: 1})
}

// Pipeline builds the listing aggregation: match, rank, sort, then one
// $facet producing the page and the total.
func Pipeline(p Params, table rank.Table, now time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: Filter(p, now)}},
		{{Key: "$addFields", Value: bson.M{rankField: table.SwitchExpr("$pin")}}},
		{{Key: "$sort", Value: Sort(p)}},
		{{Key: "$facet", Value: bson.M{
			"items": bson.A{
				bson.M{"$skip": p.Page.Skip()},
				bson.M{"$limit": int64(p.Page.Limit)},
			},
			"total": bson.A{
				bson.M{"$count": "count"},
			},
		}}},
	}
}

// Row is a member as listed: the stored fields plus rank and status.
type Row struct {
	models.Member `bson:",inline"`
	PinRank       int    `bson:"pin_rank" json:"pinRank"`
	Status        string `bson:"-" json:"status"`
}

// Page is one page of rows.
type Page struct {
	Data       []Row       `json:"data"`
	Pagination paging.Info `json:"pagination"`
}

// Stats are the dashboard counters.
type Stats struct {
	Active  int64            `json:"active"`
	Expired int64            `json:"expired"`
	Pin     map[string]int64 `json:"pin"`
}

// Engine runs member queries against the members collection using ranks
// read from src on every call.
type Engine struct {
	members *mongo.Collection
	ranks   rank.Source
	now     func() time.Time
}

func New(db *mongo.Database, ranks rank.Source) *Engine {
	return &Engine{
		members: db.Collection("members"),
		ranks:   ranks,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the evaluation clock. Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// List returns one page of members. Pages past the end have no rows.
func (e *Engine) List(ctx context.Context, p Params) (Page, error) {
	table, err := rank.Build(ctx, e.ranks)
	if err != nil {
		return Page{}, err
	}
	now := e.now()

	cur, err := e.members.Aggregate(ctx, Pipeline(p, table, now))
	if err != nil {
		return Page{}, err
	}
	defer cur.Close(ctx)

	var out []struct {
		Items []Row `bson:"items"`
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return Page{}, err
	}

	page := Page{Data: []Row{}}
	var total int64
	if len(out) > 0 {
		if out[0].Items != nil {
			page.Data = out[0].Items
		}
		if len(out[0].Total) > 0 {
			total = out[0].Total[0].Count
		}
	}
	for i := range page.Data {
		page.Data[i].Status = memberstatus.Derive(page.Data[i].EndPin, now)
	}
	page.Pagination = paging.NewInfo(p.Page, total)
	return page, nil
}

// Get returns one member with its rank and status.
func (e *Engine) Get(ctx context.Context, m models.Member) (Row, error) {
	table, err := rank.Build(ctx, e.ranks)
	if err != nil {
		return Row{}, err
	}
	return Row{
		Member:  m,
		PinRank: table.Rank(m.Pin),
		Status:  memberstatus.Derive(m.EndPin, e.now()),
	}, nil
}

// Stats counts active and expired members and members per pin name.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	now := e.now()
	active, _ := memberstatus.Filter(memberstatus.Active, now)
	expired, _ := memberstatus.Filter(memberstatus.Expired, now)

	pipe := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"active": bson.A{
				bson.M{"$match": bson.M{"end_pin": active}},
				bson.M{"$count": "count"},
			},
			"expired": bson.A{
				bson.M{"$match": bson.M{"end_pin": expired}},
				bson.M{"$count": "count"},
			},
			"pin": bson.A{
				bson.M{"$group": bson.M{"_id": "$pin", "count": bson.M{"$sum": 1}}},
			},
		}}},
	}
	cur, err := e.members.Aggregate(ctx, pipe)
	if err != nil {
		return Stats{}, err
	}
	defer cur.Close(ctx)

	type counted struct {
		Count int64 `bson:"count"`
	}
	var out []struct {
		Active  []counted `bson:"active"`
		Expired []counted `bson:"expired"`
		Pin     []struct {
			Name  string `bson:"_id"`
			Count int64  `bson:"count"`
		} `bson:"pin"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return Stats{}, err
	}

	stats := Stats{Pin: map[string]int64{}}
	if len(out) == 0 {
		return stats, nil
	}
	if len(out[0].Active) > 0 {
		stats.Active = out[0].Active[0].Count
	}
	if len(out[0].Expired) > 0 {
		stats.Expired = out[0].Expired[0].Count
	}
	for _, p := range out[0].Pin {
		stats.Pin[p.Name] = p.Count
	}
	return stats, nil
}
