package smssvc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vipinkoroth/sarvodaya/core"
)

// gatewayService forwards messages to the school's HTTP SMS/WhatsApp
// gateway. Delivery is fire-and-forget: failures are logged, never
// propagated to the caller.
type gatewayService struct {
	url    string
	key    string
	client *http.Client
	logger core.Logger
}

var _ core.SMSService = (*gatewayService)(nil)

func NewGatewayService(conf *core.Config, logger core.Logger) *gatewayService {
	return &gatewayService{
		url:    conf.Notification.SMSGatewayURL,
		key:    conf.Notification.SMSGatewayKey,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (svc gatewayService) SendMessages(messages ...*core.SMSMessage) {
	for _, msg := range messages {
		msg := msg
		go svc.send(msg)
	}
}

func (svc gatewayService) send(msg *core.SMSMessage) {
	if msg.To == "" || msg.Body == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{
		"to":      msg.To,
		"message": msg.Body,
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("encoding SMS: %v", err), err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, svc.url, bytes.NewReader(payload))
	if err != nil {
		svc.logger.Error(fmt.Sprintf("preparing SMS request: %v", err), err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+svc.key)

	res, err := svc.client.Do(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending SMS: %v", err), err)
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error(fmt.Sprintf("sending SMS - status: %d", res.StatusCode))
	}
}
