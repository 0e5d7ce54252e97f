package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// memCollection is an in-memory documentCollection keyed by string _id.
// It understands the $set, $inc and $setOnInsert operators used by the
// repositories and equality filters on top-level fields.
type memCollection struct {
	mu   sync.Mutex
	docs map[string]bson.M

	// updateHook, when set, runs before each UpdateOne. Returning a non-nil
	// result or error short-circuits the write.
	updateHook func(call int) (*mongo.UpdateResult, error)
	updates    int

	findErr error
}

func newMemCollection() *memCollection {
	return &memCollection{docs: map[string]bson.M{}}
}

func (c *memCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.findErr != nil {
		return mongo.NewSingleResultFromDocument(bson.M{}, c.findErr, nil)
	}
	for _, doc := range c.matching(filter) {
		return mongo.NewSingleResultFromDocument(doc, nil, nil)
	}
	return mongo.NewSingleResultFromDocument(bson.M{}, mongo.ErrNoDocuments, nil)
}

func (c *memCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.findErr != nil {
		return nil, c.findErr
	}
	docs := c.matching(filter)

	desc := false
	for _, o := range opts {
		if o == nil || o.Sort == nil {
			continue
		}
		if d, ok := o.Sort.(bson.D); ok && len(d) > 0 && d[0].Key == "_id" {
			desc = d[0].Value == -1
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i]["_id"].(string), docs[j]["_id"].(string)
		if desc {
			return a > b
		}
		return a < b
	})

	out := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		out = append(out, d)
	}
	return mongo.NewCursorFromDocuments(out, nil, nil)
}

func (c *memCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.updates++
	if c.updateHook != nil {
		if res, err := c.updateHook(c.updates); res != nil || err != nil {
			return res, err
		}
	}

	f := filter.(bson.M)
	id, _ := f["_id"].(string)
	if id == "" {
		return nil, fmt.Errorf("memCollection: filter without string _id: %v", f)
	}
	u := update.(bson.M)

	upsert := false
	for _, o := range opts {
		if o != nil && o.Upsert != nil {
			upsert = *o.Upsert
		}
	}

	doc, exists := c.docs[id]
	if !exists {
		if !upsert {
			return &mongo.UpdateResult{}, nil
		}
		doc = bson.M{"_id": id}
		if ins, ok := u["$setOnInsert"].(bson.M); ok {
			for k, v := range ins {
				doc[k] = v
			}
		}
	}

	before := fmt.Sprint(doc)
	if set, ok := u["$set"].(bson.M); ok {
		for k, v := range set {
			doc[k] = v
		}
	}
	if inc, ok := u["$inc"].(bson.M); ok {
		for k, v := range inc {
			cur, _ := doc[k].(int64)
			doc[k] = cur + v.(int64)
		}
	}
	c.docs[id] = doc

	if !exists {
		return &mongo.UpdateResult{UpsertedCount: 1, UpsertedID: id}, nil
	}
	res := &mongo.UpdateResult{MatchedCount: 1}
	if fmt.Sprint(doc) != before {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (c *memCollection) put(doc bson.M) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc["_id"].(string)] = doc
}

func (c *memCollection) get(id string) (bson.M, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[id]
	return d, ok
}

func (c *memCollection) matching(filter interface{}) []bson.M {
	f, _ := filter.(bson.M)
	var out []bson.M
	for _, doc := range c.docs {
		ok := true
		for k, v := range f {
			if doc[k] != v {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, doc)
		}
	}
	return out
}
