package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrooms "rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/daterange"
	"rentadmin/internal/domain/shared/money"
)

type RoomRepository struct {
	col *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{col: db.Collection(roomsCollection)}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainrooms.RoomID) (*domainrooms.Room, error) {
	var doc roomDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrooms.ErrRoomNotFound
		}
		return nil, err
	}
	return doc.toRoom(), nil
}

func (r *RoomRepository) Save(ctx context.Context, room *domainrooms.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}
	doc := newRoomDocument(room)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

type RateRepository struct {
	col *mongo.Collection
}

func NewRateRepository(db *mongo.Database) *RateRepository {
	return &RateRepository{col: db.Collection(ratesCollection)}
}

// Overlapping finds rates whose inclusive period intersects the nights of stay.
func (r *RateRepository) Overlapping(ctx context.Context, id domainrooms.RoomID, stay daterange.DateRange) ([]domainrooms.SeasonalRate, error) {
	if stay.Empty() {
		return nil, nil
	}
	lastNight := stay.CheckOut.AddDate(0, 0, -1)
	filter := bson.M{
		"room_id":      string(id),
		"period.start": bson.M{"$lte": lastNight.UnixMilli()},
		"period.end":   bson.M{"$gte": stay.CheckIn.UnixMilli()},
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domainrooms.SeasonalRate
	for cur.Next(ctx) {
		var doc rateDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toRate())
	}
	return out, cur.Err()
}

func (r *RateRepository) Save(ctx context.Context, rate domainrooms.SeasonalRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	doc := newRateDocument(rate)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

type moneyDocument struct {
	Amount   int64  `bson:"amount_minor"`
	Currency string `bson:"currency"`
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

type roomDocument struct {
	ID            string        `bson:"_id"`
	TenantID      string        `bson:"tenant_id"`
	Name          string        `bson:"name"`
	BasePrice     moneyDocument `bson:"base_price_per_night"`
	MinStayNights int           `bson:"min_stay_nights"`
	MaxStayNights *int          `bson:"max_stay_nights,omitempty"`
	CreatedAt     int64         `bson:"created_at"`
	UpdatedAt     int64         `bson:"updated_at"`
}

func newRoomDocument(r *domainrooms.Room) roomDocument {
	return roomDocument{
		ID:            string(r.ID),
		TenantID:      string(r.TenantID),
		Name:          r.Name,
		BasePrice:     moneyDocument{Amount: r.BasePricePerNight.Amount, Currency: r.BasePricePerNight.Currency},
		MinStayNights: r.MinStayNights,
		MaxStayNights: r.MaxStayNights,
		CreatedAt:     r.CreatedAt.UnixMilli(),
		UpdatedAt:     r.UpdatedAt.UnixMilli(),
	}
}

func (d roomDocument) toRoom() *domainrooms.Room {
	return &domainrooms.Room{
		ID:                domainrooms.RoomID(d.ID),
		TenantID:          domainrooms.TenantID(d.TenantID),
		Name:              d.Name,
		BasePricePerNight: d.BasePrice.toMoney(),
		MinStayNights:     d.MinStayNights,
		MaxStayNights:     d.MaxStayNights,
		CreatedAt:         timestampToTime(d.CreatedAt),
		UpdatedAt:         timestampToTime(d.UpdatedAt),
	}
}

type periodDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

type rateDocument struct {
	ID            string         `bson:"_id"`
	RoomID        string         `bson:"room_id"`
	Name          string         `bson:"name"`
	Period        periodDocument `bson:"period"`
	PricePerNight moneyDocument  `bson:"price_per_night"`
	Priority      int            `bson:"priority"`
	MinNights     *int           `bson:"min_nights,omitempty"`
	CreatedAt     int64          `bson:"created_at"`
}

func newRateDocument(r domainrooms.SeasonalRate) rateDocument {
	return rateDocument{
		ID:            string(r.ID),
		RoomID:        string(r.RoomID),
		Name:          r.Name,
		Period:        periodDocument{Start: r.Period.Start.UnixMilli(), End: r.Period.End.UnixMilli()},
		PricePerNight: moneyDocument{Amount: r.PricePerNight.Amount, Currency: r.PricePerNight.Currency},
		Priority:      r.Priority,
		MinNights:     r.MinNights,
		CreatedAt:     r.CreatedAt.UnixMilli(),
	}
}

func (d rateDocument) toRate() domainrooms.SeasonalRate {
	return domainrooms.SeasonalRate{
		ID:            domainrooms.RateID(d.ID),
		RoomID:        domainrooms.RoomID(d.RoomID),
		Name:          d.Name,
		Period:        daterange.Period{Start: timestampToTime(d.Period.Start), End: timestampToTime(d.Period.End)},
		PricePerNight: d.PricePerNight.toMoney(),
		Priority:      d.Priority,
		MinNights:     d.MinNights,
		CreatedAt:     timestampToTime(d.CreatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var (
	_ domainrooms.Repository     = (*RoomRepository)(nil)
	_ domainrooms.RateRepository = (*RateRepository)(nil)
)
