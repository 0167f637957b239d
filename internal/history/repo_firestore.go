package history

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const firestoreCollection = "historial"

// FirestoreRepo implements Repo and Watcher on Cloud Firestore.
type FirestoreRepo struct {
	Client *firestore.Client
}

// Create writes a record document; Firestore assigns the server
// timestamp declared on the CreatedAt field.
func (r *FirestoreRepo) Create(ctx context.Context, rec Record) (Record, error) {
	ref := r.Client.Collection(firestoreCollection).Doc(rec.ID)
	if _, err := ref.Set(ctx, rec); err != nil {
		return Record{}, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return Record{}, err
	}
	return recordFromSnapshot(snap)
}

// ListByUser lists the user's records, newest first.
func (r *FirestoreRepo) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	iter := r.userQuery(userID).Documents(ctx)
	defer iter.Stop()

	var out []Record
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := recordFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Delete removes a record after verifying the caller owns it.
func (r *FirestoreRepo) Delete(ctx context.Context, userID, recordID string) error {
	ref := r.Client.Collection(firestoreCollection).Doc(recordID)
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return err
	}
	owner, err := snap.DataAt("uid")
	if err != nil || owner != userID {
		return ErrNotFound
	}
	_, err = ref.Delete(ctx)
	return err
}

// Watch streams full snapshots of the user's records on every change.
func (r *FirestoreRepo) Watch(ctx context.Context, userID string) (<-chan []Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(chan []Record, 4)
	snapshots := r.userQuery(userID).Snapshots(ctx)

	go func() {
		defer close(out)
		defer snapshots.Stop()
		for {
			qs, err := snapshots.Next()
			if err != nil {
				return
			}
			records, err := recordsFromQuerySnapshot(qs)
			if err != nil {
				continue
			}
			select {
			case out <- records:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (r *FirestoreRepo) userQuery(userID string) firestore.Query {
	return r.Client.Collection(firestoreCollection).
		Where("uid", "==", userID).
		OrderBy("createdAt", firestore.Desc)
}

func recordsFromQuerySnapshot(qs *firestore.QuerySnapshot) ([]Record, error) {
	var out []Record
	for {
		snap, err := qs.Documents.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := recordFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// recordFromSnapshot reads a document through the field map so legacy
// field names written by earlier revisions still decode.
func recordFromSnapshot(snap *firestore.DocumentSnapshot) (Record, error) {
	data := snap.Data()
	doc, err := documentFromData(stripMetaFields(data))
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		ID:       snap.Ref.ID,
		Document: doc,
	}
	if uid, ok := data["uid"].(string); ok {
		rec.UserID = uid
	}
	if ts, ok := data["createdAt"].(time.Time); ok {
		rec.CreatedAt = ts
	}
	return rec, nil
}

func stripMetaFields(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if k == "uid" || k == "createdAt" {
			continue
		}
		out[k] = v
	}
	return out
}

var _ Repo = (*FirestoreRepo)(nil)
var _ Watcher = (*FirestoreRepo)(nil)
