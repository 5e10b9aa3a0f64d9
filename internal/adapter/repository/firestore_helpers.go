package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"b2bmarket/pkg/errors"
)

const (
	colUsers          = "users"
	colRFQs           = "rfqs"
	colQuotes         = "quotes"
	colChatRooms      = "chat_rooms"
	colMessages       = "messages"
	colOrders         = "orders"
	colCreditAccounts = "credit_accounts"
	colLedgerEntries  = "credit_ledger_entries"
	colChargeRequests = "credit_charge_requests"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

func wrapGetError(resource string, err error) error {
	if isNotFound(err) {
		return errors.NotFound(resource, err)
	}
	return errors.Internal("Failed to get "+resource, err)
}

// decodeAll drains iter into a slice of T.
func decodeAll[T any](iter *firestore.DocumentIterator) ([]*T, error) {
	defer iter.Stop()

	var out []*T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}

// first returns the first document of iter or nil when it is empty.
func first[T any](iter *firestore.DocumentIterator) (*T, error) {
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := doc.DataTo(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// count walks an id-only projection of query.
func count(ctx context.Context, query firestore.Query) (int64, error) {
	iter := query.Select().Documents(ctx)
	defer iter.Stop()

	var n int64
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			return n, nil
		}
		if err != nil {
			return 0, err
		}
		n++
	}
}

// page lists one page of query together with the unpaged total.
func page[T any](ctx context.Context, query firestore.Query, limit, offset int) ([]*T, int64, error) {
	total, err := count(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	items, err := decodeAll[T](query.Offset(offset).Limit(limit).Documents(ctx))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
