package leads

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jordanlanch/leadcrm/pkg/status"
)

// MongoStore persists leads in a single MongoDB collection with the status
// history embedded in each document. Keeping history embedded is what lets a
// transition be one FindOneAndUpdate combining $set and $push, so the status
// field and its matching history entry can never be persisted apart.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a store over the "leads" collection of db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("leads")}
}

var _ Store = (*MongoStore)(nil)

type historyDoc struct {
	FromStatus string              `bson:"fromStatus"`
	ToStatus   string              `bson:"toStatus"`
	Notes      string              `bson:"notes"`
	ChangedBy  *primitive.ObjectID `bson:"changedBy,omitempty"`
	Timestamp  time.Time           `bson:"timestamp"`
}

type leadDoc struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty"`
	FirstName       string              `bson:"firstName"`
	LastName        string              `bson:"lastName"`
	Email           string              `bson:"email,omitempty"`
	Phone           string              `bson:"phone,omitempty"`
	DOB             string              `bson:"dob,omitempty"`
	Address         string              `bson:"address,omitempty"`
	Notes           string              `bson:"notes,omitempty"`
	ApplicationType string              `bson:"applicationType,omitempty"`
	Lawsuit         string              `bson:"lawsuit,omitempty"`
	Status          string              `bson:"status"`
	BuyerCode       string              `bson:"buyerCode,omitempty"`
	Fields          []Field             `bson:"fields,omitempty"`
	StatusHistory   []historyDoc        `bson:"statusHistory"`
	CreatedBy       *primitive.ObjectID `bson:"createdBy,omitempty"`
	OrganizationID  *primitive.ObjectID `bson:"organizationId,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt"`
}

func (s *MongoStore) Insert(ctx context.Context, l *Lead) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	doc := toDoc(l)
	doc.ID = primitive.NewObjectID()

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	l.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Lead, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc leadDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lead %s: %w", id, err)
	}
	return fromDoc(&doc), nil
}

func (s *MongoStore) List(ctx context.Context, f ListFilter) ([]*Lead, int, error) {
	filter := scopeFilter(f.Scope)
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Search != "" {
		esc := regexp.QuoteMeta(f.Search)
		filter["$or"] = []bson.M{
			{"$expr": bson.M{"$regexMatch": bson.M{
				"input": bson.M{"$concat": bson.A{
					bson.M{"$ifNull": bson.A{"$firstName", ""}},
					" ",
					bson.M{"$ifNull": bson.A{"$lastName", ""}},
				}},
				"regex":   esc,
				"options": "i",
			}}},
			{"email": bson.M{"$regex": esc, "$options": "i"}},
		}
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	page, size := normalizePage(f.Page, f.PageSize)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leads: %w", err)
	}
	defer cur.Close(ctx)

	var out []*Lead
	for cur.Next(ctx) {
		var doc leadDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode lead: %w", err)
		}
		out = append(out, fromDoc(&doc))
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return out, int(total), nil
}

func (s *MongoStore) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*Lead, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("firstName", patch.FirstName)
	put("lastName", patch.LastName)
	put("email", patch.Email)
	put("phone", patch.Phone)
	put("dob", patch.DOB)
	put("address", patch.Address)
	put("notes", patch.Notes)
	put("applicationType", patch.ApplicationType)
	put("lawsuit", patch.Lawsuit)
	if patch.Fields != nil {
		set["fields"] = patch.Fields
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	var doc leadDoc
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update lead %s: %w", id, err)
	}
	return fromDoc(&doc), nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete lead %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ApplyTransition(ctx context.Context, id string, from status.Status, entry HistoryEntry, buyerCode *string) (*Lead, bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false, ErrNotFound
	}

	set := bson.M{"status": string(entry.ToStatus)}
	if buyerCode != nil {
		set["buyerCode"] = *buyerCode
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"statusHistory": toHistoryDoc(entry)},
	}

	// The filter pins the status the caller observed, so a concurrent writer
	// causes a miss instead of a lost update.
	var doc leadDoc
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(from)},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		// Either the lead is gone or the snapshot was stale.
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return nil, false, getErr
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to apply transition on lead %s: %w", id, err)
	}
	return fromDoc(&doc), true, nil
}

func (s *MongoStore) StatusCounts(ctx context.Context, scope Scope) (map[status.Status]int, error) {
	pipeline := []bson.M{
		{"$match": scopeFilter(scope)},
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate status counts: %w", err)
	}
	defer cur.Close(ctx)

	counts := make(map[status.Status]int)
	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int    `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode status count: %w", err)
		}
		counts[status.Status(row.Status)] = row.Count
	}
	return counts, cur.Err()
}

func (s *MongoStore) Count(ctx context.Context, scope Scope) (int, error) {
	n, err := s.coll.CountDocuments(ctx, scopeFilter(scope))
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return int(n), nil
}

func (s *MongoStore) RecentActivity(ctx context.Context, scope Scope, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	pipeline := []bson.M{
		{"$match": scopeFilter(scope)},
		{"$unwind": bson.M{"path": "$statusHistory", "includeArrayIndex": "historyIndex"}},
		{"$sort": bson.D{
			{Key: "statusHistory.timestamp", Value: -1},
			{Key: "_id", Value: 1},
			{Key: "historyIndex", Value: -1},
		}},
		{"$limit": limit},
		{"$project": bson.M{
			"firstName": 1,
			"lastName":  1,
			"entry":     "$statusHistory",
		}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate recent activity: %w", err)
	}
	defer cur.Close(ctx)

	var out []ActivityEntry
	for cur.Next(ctx) {
		var row struct {
			ID        primitive.ObjectID `bson:"_id"`
			FirstName string             `bson:"firstName"`
			LastName  string             `bson:"lastName"`
			Entry     historyDoc         `bson:"entry"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode activity entry: %w", err)
		}
		e := ActivityEntry{
			LeadID:    row.ID.Hex(),
			FirstName: row.FirstName,
			LastName:  row.LastName,
			ToStatus:  status.Status(row.Entry.ToStatus),
			Timestamp: row.Entry.Timestamp,
		}
		if row.Entry.ChangedBy != nil {
			e.ChangedBy = row.Entry.ChangedBy.Hex()
		}
		out = append(out, e)
	}
	return out, cur.Err()
}

func (s *MongoStore) CreatedPerHour(ctx context.Context, scope Scope, since time.Time) ([]HourCount, error) {
	match := scopeFilter(scope)
	match["createdAt"] = bson.M{"$gte": since}

	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":   bson.M{"$dateTrunc": bson.M{"date": "$createdAt", "unit": "hour"}},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate creation series: %w", err)
	}
	defer cur.Close(ctx)

	var out []HourCount
	for cur.Next(ctx) {
		var row struct {
			Hour  time.Time `bson:"_id"`
			Count int       `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode hour bucket: %w", err)
		}
		out = append(out, HourCount{Hour: row.Hour.UTC(), Count: row.Count})
	}
	return out, cur.Err()
}

// EnsureIndexes creates the indexes the list and aggregation paths rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "organizationId", Value: 1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create lead indexes: %w", err)
	}
	return nil
}

func scopeFilter(scope Scope) bson.M {
	if scope.All {
		return bson.M{}
	}
	creator := bson.M{"createdBy": hexOrNil(scope.UserID)}
	if scope.OrganizationID == "" {
		return creator
	}
	return bson.M{"$or": []bson.M{
		{"organizationId": hexOrNil(scope.OrganizationID)},
		creator,
	}}
}

// hexOrNil converts a hex id, falling back to the zero ObjectID so that a
// malformed id matches nothing rather than everything.
func hexOrNil(id string) primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

func toHistoryDoc(e HistoryEntry) historyDoc {
	d := historyDoc{
		FromStatus: string(e.FromStatus),
		ToStatus:   string(e.ToStatus),
		Notes:      e.Notes,
		Timestamp:  e.Timestamp,
	}
	if oid, err := primitive.ObjectIDFromHex(e.ChangedBy); err == nil {
		d.ChangedBy = &oid
	}
	return d
}

func toDoc(l *Lead) *leadDoc {
	doc := &leadDoc{
		FirstName:       l.FirstName,
		LastName:        l.LastName,
		Email:           l.Email,
		Phone:           l.Phone,
		DOB:             l.DOB,
		Address:         l.Address,
		Notes:           l.Notes,
		ApplicationType: l.ApplicationType,
		Lawsuit:         l.Lawsuit,
		Status:          string(l.Status),
		BuyerCode:       l.BuyerCode,
		Fields:          l.Fields,
		StatusHistory:   make([]historyDoc, 0, len(l.StatusHistory)),
		CreatedAt:       l.CreatedAt,
	}
	for _, h := range l.StatusHistory {
		doc.StatusHistory = append(doc.StatusHistory, toHistoryDoc(h))
	}
	if oid, err := primitive.ObjectIDFromHex(l.CreatedBy); err == nil {
		doc.CreatedBy = &oid
	}
	if oid, err := primitive.ObjectIDFromHex(l.OrganizationID); err == nil {
		doc.OrganizationID = &oid
	}
	return doc
}

func fromDoc(d *leadDoc) *Lead {
	l := &Lead{
		ID:              d.ID.Hex(),
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		Email:           d.Email,
		Phone:           d.Phone,
		DOB:             d.DOB,
		Address:         d.Address,
		Notes:           d.Notes,
		ApplicationType: d.ApplicationType,
		Lawsuit:         d.Lawsuit,
		Status:          status.Status(d.Status),
		BuyerCode:       d.BuyerCode,
		Fields:          d.Fields,
		StatusHistory:   make([]HistoryEntry, 0, len(d.StatusHistory)),
		CreatedAt:       d.CreatedAt,
	}
	for _, h := range d.StatusHistory {
		e := HistoryEntry{
			FromStatus: status.Status(h.FromStatus),
			ToStatus:   status.Status(h.ToStatus),
			Notes:      h.Notes,
			Timestamp:  h.Timestamp,
		}
		if h.ChangedBy != nil {
			e.ChangedBy = h.ChangedBy.Hex()
		}
		l.StatusHistory = append(l.StatusHistory, e)
	}
	if d.CreatedBy != nil {
		l.CreatedBy = d.CreatedBy.Hex()
	}
	if d.OrganizationID != nil {
		l.OrganizationID = d.OrganizationID.Hex()
	}
	return l
}
