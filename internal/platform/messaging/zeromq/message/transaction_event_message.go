package message

import "MiniBase/internal/domain"

type TransactionEventMessage struct {
	TransId    int32   `json:"trans_id"`
	Type       string  `json:"type"`
	Timestamp  float64 `json:"timestamp"`
	InstanceId string  `json:"instance_id"`
	Topic      string  `json:"-"`
}

func TransactionEventMessageFrom(event domain.TransactionEvent, instanceId string) TransactionEventMessage {
	return TransactionEventMessage{
		TransId:    event.TransId,
		Type:       event.Type.String(),
		Timestamp:  event.Timestamp,
		InstanceId: instanceId,
	}
}
