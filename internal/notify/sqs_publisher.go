package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
)

// SQSReportPublisher đẩy report vi phạm lên SQS cho hệ thống an ninh
// campus xử lý tiếp. Fire-and-forget: lỗi publish chỉ được log, report
// đã nằm trong DB nên không mất dữ liệu.
type SQSReportPublisher struct {
	sqsClient *sqs.Client
	queueURL  string
}

func NewSQSReportPublisher(client *sqs.Client, queueURL string) *SQSReportPublisher {
	return &SQSReportPublisher{
		sqsClient: client,
		queueURL:  queueURL,
	}
}

func (p *SQSReportPublisher) PublishReport(ctx context.Context, report *domain.Report) {
	if p.sqsClient == nil || p.queueURL == "" {
		return
	}

	body, err := json.Marshal(report)
	if err != nil {
		log.Printf("SQSReportPublisher: lỗi marshal report %d: %v", report.ID, err)
		return
	}

	_, err = p.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		log.Printf("SQSReportPublisher: lỗi khi gửi report %d lên queue: %v", report.ID, err)
		return
	}
	log.Printf("SQSReportPublisher: đã đẩy report %d (%s) lên queue", report.ID, report.ReportType)
}
