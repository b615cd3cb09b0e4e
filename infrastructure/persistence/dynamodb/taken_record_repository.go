package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pillbox-backend/application/ports"
	pkgerrors "pillbox-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// TakenRecordRepository implements ports.TakenRecordRepository using DynamoDB
type TakenRecordRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewTakenRecordRepository creates a new TakenRecordRepository
func NewTakenRecordRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.TakenRecordRepository {
	return &TakenRecordRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// takenRecordItem represents the DynamoDB item structure for a dose
// confirmation. One item per device/slot/date; unchecking deletes the item
// rather than flipping Checked, so existence alone answers "taken today?".
type takenRecordItem struct {
	PK        string `dynamodbav:"PK"` // CHECK#<deviceId>
	SK        string `dynamodbav:"SK"` // <date>#<slotId>
	DeviceID  string `dynamodbav:"DeviceID"`
	SlotID    string `dynamodbav:"SlotID"`
	Date      string `dynamodbav:"Date"`
	Checked   bool   `dynamodbav:"Checked"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

func checkPK(deviceID string) string {
	return fmt.Sprintf("CHECK#%s", deviceID)
}

func checkSK(date, slotID string) string {
	return fmt.Sprintf("%s#%s", date, slotID)
}

// DocID builds the composite document id exposed to clients
func DocID(deviceID, slotID, date string) string {
	return fmt.Sprintf("%s_%s_%s", deviceID, slotID, date)
}

// Upsert writes the taken-record for a confirmed dose
func (r *TakenRecordRepository) Upsert(ctx context.Context, deviceID, slotID, date string) (ports.TakenRecord, error) {
	now := time.Now().UTC()

	item := takenRecordItem{
		PK:        checkPK(deviceID),
		SK:        checkSK(date, slotID),
		DeviceID:  deviceID,
		SlotID:    slotID,
		Date:      date,
		Checked:   true,
		UpdatedAt: now.Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return ports.TakenRecord{}, pkgerrors.NewInternalError("failed to marshal taken record", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		r.logger.Error("Failed to save taken record",
			zap.Error(err),
			zap.String("deviceID", deviceID),
			zap.String("slotID", slotID),
			zap.String("date", date),
		)
		return ports.TakenRecord{}, pkgerrors.NewExternalError("failed to save taken record", err)
	}

	r.logger.Debug("Taken record saved",
		zap.String("docID", DocID(deviceID, slotID, date)),
	)

	return ports.TakenRecord{
		DocID:     DocID(deviceID, slotID, date),
		DeviceID:  deviceID,
		SlotID:    slotID,
		Date:      date,
		Checked:   true,
		UpdatedAt: now,
	}, nil
}

// Delete removes the taken-record when a dose is unchecked. Deleting a
// record that never existed is not an error.
func (r *TakenRecordRepository) Delete(ctx context.Context, deviceID, slotID, date string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: checkPK(deviceID)},
			"SK": &types.AttributeValueMemberS{Value: checkSK(date, slotID)},
		},
	})
	if err != nil {
		r.logger.Error("Failed to delete taken record",
			zap.Error(err),
			zap.String("deviceID", deviceID),
			zap.String("slotID", slotID),
			zap.String("date", date),
		)
		return pkgerrors.NewExternalError("failed to delete taken record", err)
	}

	r.logger.Debug("Taken record deleted",
		zap.String("docID", DocID(deviceID, slotID, date)),
	)
	return nil
}

// Exists reports whether a dose was confirmed for the device/slot/date.
// The delivery executor uses this to suppress redundant reminders; any
// missing record counts as "not yet taken".
func (r *TakenRecordRepository) Exists(ctx context.Context, deviceID, slotID, date string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: checkPK(deviceID)},
			"SK": &types.AttributeValueMemberS{Value: checkSK(date, slotID)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, pkgerrors.NewExternalError("failed to look up taken record", err)
	}

	if out.Item == nil {
		return false, nil
	}

	var item takenRecordItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return false, pkgerrors.NewInternalError("failed to unmarshal taken record", err)
	}
	return item.Checked, nil
}

// ListByDate returns every confirmation a device stored for one date,
// letting a device rebuild its checklist after a reinstall.
func (r *TakenRecordRepository) ListByDate(ctx context.Context, deviceID, date string) ([]ports.TakenRecord, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(checkPK(deviceID))).
		And(expression.Key("SK").BeginsWith(date + "#"))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query expression", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		r.logger.Error("Failed to query taken records",
			zap.Error(err),
			zap.String("deviceID", deviceID),
			zap.String("date", date),
		)
		return nil, pkgerrors.NewExternalError("failed to query taken records", err)
	}

	records := make([]ports.TakenRecord, 0, len(out.Items))
	for _, raw := range out.Items {
		var item takenRecordItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Skipping unreadable taken record", zap.Error(err))
			continue
		}

		updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)
		records = append(records, ports.TakenRecord{
			DocID:     DocID(item.DeviceID, item.SlotID, item.Date),
			DeviceID:  item.DeviceID,
			SlotID:    item.SlotID,
			Date:      item.Date,
			Checked:   item.Checked,
			UpdatedAt: updatedAt,
		})
	}
	return records, nil
}
