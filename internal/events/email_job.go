package events

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EmailJob is one recipient's share of a bulk send.
type EmailJob struct {
	BatchID string `json:"batch_id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (j EmailJob) ToMessage() (*message.Message, error) {
	payload, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return message.NewMessage(watermill.NewUUID(), payload), nil
}

func EmailJobFromMessage(msg *message.Message) (EmailJob, error) {
	var job EmailJob
	err := json.Unmarshal(msg.Payload, &job)
	return job, err
}
