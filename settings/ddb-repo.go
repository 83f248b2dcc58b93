package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/guregu/dynamo/v2"
)

const ddbSnapshotKey = "admin"

// SnapshotRow is the DynamoDB item holding the admin snapshot.
type SnapshotRow struct {
	ID                        string    `dynamo:"id,hash"` // Primary key, always "admin"
	CurrentInterval           int       `dynamo:"current_interval"`
	IsSubmissionsOpen         bool      `dynamo:"is_submissions_open"`
	MaxSubmissionsPerInterval int       `dynamo:"max_submissions_per_interval"`
	UpdatedAt                 time.Time `dynamo:"updated_at"`
}

func (row SnapshotRow) snapshot() Snapshot {
	return Snapshot{
		CurrentInterval:           row.CurrentInterval,
		IsSubmissionsOpen:         row.IsSubmissionsOpen,
		MaxSubmissionsPerInterval: row.MaxSubmissionsPerInterval,
		UpdatedAt:                 row.UpdatedAt,
	}
}

type DynamoDbSnapshotTable struct {
	ddbClient     *dynamodb.Client
	tableName     string
	snapshotTable *dynamo.Table
}

func NewDynamoDbSnapshotTable(ddbClient *dynamodb.Client, tableName string) *DynamoDbSnapshotTable {
	ddb := &DynamoDbSnapshotTable{
		ddbClient: ddbClient,
		tableName: tableName,
	}
	db := dynamo.NewFromIface(ddb.ddbClient)
	table := db.Table(ddb.tableName)
	ddb.snapshotTable = &table

	return ddb
}

func (ddb *DynamoDbSnapshotTable) ReadSnapshot(ctx context.Context) (Snapshot, bool, error) {
	row := new(SnapshotRow)
	err := ddb.snapshotTable.Get("id", ddbSnapshotKey).Consistent(true).One(ctx, row)
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("failed to get snapshot item: %w", err)
	}
	return row.snapshot(), true, nil
}

func (ddb *DynamoDbSnapshotTable) CreateSnapshot(ctx context.Context, s Snapshot) (Snapshot, bool, error) {
	row := SnapshotRow{
		ID:                        ddbSnapshotKey,
		CurrentInterval:           s.CurrentInterval,
		IsSubmissionsOpen:         s.IsSubmissionsOpen,
		MaxSubmissionsPerInterval: s.MaxSubmissionsPerInterval,
		UpdatedAt:                 s.UpdatedAt,
	}
	err := ddb.snapshotTable.Put(row).If("attribute_not_exists(id)").Run(ctx)
	if err == nil {
		return s, true, nil
	}
	if !dynamo.IsCondCheckFailed(err) {
		return Snapshot{}, false, fmt.Errorf("failed to put snapshot item: %w", err)
	}

	existing, found, err := ddb.ReadSnapshot(ctx)
	if err != nil {
		return Snapshot{}, false, err
	}
	if !found {
		return Snapshot{}, false, ErrSnapshotNotFound
	}
	return existing, false, nil
}

func (ddb *DynamoDbSnapshotTable) UpdateIntervalState(ctx context.Context, state IntervalState) (Snapshot, bool, error) {
	var row SnapshotRow
	err := ddb.snapshotTable.Update("id", ddbSnapshotKey).
		Set("current_interval", state.CurrentInterval).
		Set("is_submissions_open", state.IsSubmissionsOpen).
		Set("updated_at", time.Now()).
		If("attribute_exists(id)").
		If("current_interval <> ? OR is_submissions_open <> ?", state.CurrentInterval, state.IsSubmissionsOpen).
		Value(ctx, &row)
	if err != nil {
		if dynamo.IsCondCheckFailed(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("failed to update snapshot item: %w", err)
	}
	return row.snapshot(), true, nil
}

func (ddb *DynamoDbSnapshotTable) SetMaxSubmissions(ctx context.Context, max int) (Snapshot, error) {
	var row SnapshotRow
	err := ddb.snapshotTable.Update("id", ddbSnapshotKey).
		Set("max_submissions_per_interval", max).
		Set("updated_at", time.Now()).
		If("attribute_exists(id)").
		Value(ctx, &row)
	if err != nil {
		if dynamo.IsCondCheckFailed(err) {
			return Snapshot{}, ErrSnapshotNotFound
		}
		return Snapshot{}, fmt.Errorf("failed to update snapshot quota: %w", err)
	}
	return row.snapshot(), nil
}
