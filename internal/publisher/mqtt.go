package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"lumengrid/internal/observability/metrics"
	"lumengrid/internal/usage/application"
	usage "lumengrid/internal/usage/domain"
)

const (
	defaultTopicPrefix = "lumengrid"
	publishTimeout     = 5 * time.Second
	connectTimeout     = 10 * time.Second
)

// Publisher forwards computed usage reports to interested consumers.
type Publisher interface {
	PublishReport(req usage.Request, report *application.Report) error
}

// MQTTPublisher publishes calculation results to an MQTT broker.
type MQTTPublisher struct {
	client      mqtt.Client
	topicPrefix string
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(broker, username, password, topicPrefix string) (*MQTTPublisher, error) {
	if broker == "" {
		return nil, fmt.Errorf("publisher: mqtt broker address is required")
	}
	if topicPrefix == "" {
		topicPrefix = defaultTopicPrefix
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", broker))
	opts.SetClientID("lumengrid")
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)
	if username != "" {
		opts.SetUsername(username)
	}
	if password != "" {
		opts.SetPassword(password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("publisher: connecting to MQTT broker: %w", token.Error())
	}
	return &MQTTPublisher{client: client, topicPrefix: topicPrefix}, nil
}

type monthPayload struct {
	Date     string  `json:"date"`
	UsageKwh float64 `json:"usage"`
}

type reportPayload struct {
	Latitude    float64        `json:"lat"`
	Longitude   float64        `json:"long"`
	RealPowerKw float64        `json:"realPower"`
	StartDate   string         `json:"startDate"`
	EndDate     string         `json:"endDate"`
	Results     []monthPayload `json:"results"`
	TotalUsage  float64        `json:"totalUsage"`
}

// PublishReport implements Publisher.
func (p *MQTTPublisher) PublishReport(req usage.Request, report *application.Report) error {
	if report == nil {
		return fmt.Errorf("publisher: nil report")
	}
	payload := reportPayload{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		RealPowerKw: req.RealPowerKw,
		StartDate:   req.StartDate.Format("2006-01-02"),
		EndDate:     req.EndDate.Format("2006-01-02"),
		TotalUsage:  report.TotalKwh,
	}
	for _, month := range report.Months {
		payload.Results = append(payload.Results, monthPayload{
			Date:     month.MonthStart.Format("2006-01-02"),
			UsageKwh: month.UsageKwh,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		metrics.IncPublish(metrics.ResultError)
		return err
	}
	token := p.client.Publish(p.topicPrefix+"/usage", 0, false, data)
	if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
		metrics.IncPublish(metrics.ResultError)
		if token.Error() != nil {
			return fmt.Errorf("publisher: publish: %w", token.Error())
		}
		return fmt.Errorf("publisher: publish timeout")
	}
	metrics.IncPublish(metrics.ResultSuccess)
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	if p != nil && p.client != nil {
		p.client.Disconnect(250)
	}
}
