package smssvc

import (
	"fmt"
	"log"
	"sync"

	"github.com/vipinkoroth/sarvodaya/core"
)

var (
	SentMessages = make([]core.SMSMessage, 0)
	mu           sync.Mutex
)

type consoleService struct {
	disableOutput bool
}

var _ core.SMSService = (*consoleService)(nil)

func NewConsoleService() core.SMSService {
	return &consoleService{}
}

func (svc consoleService) SendMessages(messages ...*core.SMSMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.SMSMessage) {
	if msg.To == "" || msg.Body == "" {
		return
	}
	if !svc.disableOutput {
		log.Println(fmt.Sprintf("SMS to %s:\r\n%s", msg.To, msg.Body))
	}
	mu.Lock()
	SentMessages = append(SentMessages, *msg)
	mu.Unlock()
}

type consoleServiceMock struct {
	consoleService
}

func NewConsoleServiceMock() core.SMSService {
	return &consoleServiceMock{consoleService{disableOutput: true}}
}

func (svc *consoleServiceMock) SendMessages(messages ...*core.SMSMessage) {
	for _, msg := range messages {
		// run synchronously
		svc.sendMessage(msg)
	}
}
