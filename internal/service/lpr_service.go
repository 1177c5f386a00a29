package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
)

var ErrNoPlateDetected = fmt.Errorf("%w: không nhận dạng được biển số trong ảnh", ErrValidation)

// Biển số dạng campus: 2-3 chữ cái, 3-5 chữ số, có thể có gạch nối.
var plateRegex = regexp.MustCompile(`^[A-Z]{2,3}-?[0-9]{3,5}$`)

type LPRService struct {
	rekognitionClient *rekognition.Client
	sessions          *SessionService
}

func NewLPRService(rekClient *rekognition.Client, sessions *SessionService) *LPRService {
	return &LPRService{rekognitionClient: rekClient, sessions: sessions}
}

// ProcessCheckIn nhận ảnh camera cổng, trích biển số rồi chuyển cho luồng
// check-in thường. ManualOverride bỏ qua bước nhận dạng.
func (s *LPRService) ProcessCheckIn(ctx context.Context, req domain.LPRProcessRequest) (*domain.LPRProcessResponse, *domain.ParkingSession, error) {
	var plate string
	var confidence float32
	isManual := false

	if req.ManualOverride != "" {
		plate = strings.ToUpper(strings.TrimSpace(req.ManualOverride))
		isManual = true
	} else {
		imageBytes, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: ảnh base64 không hợp lệ: %v", ErrValidation, err)
		}
		plate, confidence, err = s.detectPlate(ctx, imageBytes)
		if err != nil {
			return nil, nil, err
		}
	}

	resp := &domain.LPRProcessResponse{
		DetectedPlate: plate,
		Confidence:    confidence,
		IsManual:      isManual,
	}

	session, err := s.sessions.CheckIn(ctx, domain.CheckInDTO{
		LicensePlate: plate,
		SpotID:       req.SpotID,
	})
	if err != nil {
		// Trả cả kết quả nhận dạng để client biết biển số đã đọc được gì.
		return resp, nil, err
	}
	return resp, session, nil
}

func (s *LPRService) detectPlate(ctx context.Context, imageBytes []byte) (string, float32, error) {
	if s.rekognitionClient == nil {
		return "", 0, fmt.Errorf("Rekognition client chưa được khởi tạo")
	}

	input := &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: imageBytes},
	}

	result, err := s.rekognitionClient.DetectText(ctx, input)
	if err != nil {
		log.Printf("LPRService: lỗi khi gọi Rekognition DetectText: %v", err)
		return "", 0, fmt.Errorf("lỗi Rekognition: %w", err)
	}

	var bestPlate string
	var bestConfidence float32
	for _, detection := range result.TextDetections {
		if detection.Type != types.TextTypesLine && detection.Type != types.TextTypesWord {
			continue
		}
		if detection.DetectedText == nil || detection.Confidence == nil {
			continue
		}
		txt := strings.ToUpper(strings.ReplaceAll(*detection.DetectedText, " ", ""))
		txt = strings.ReplaceAll(txt, ".", "")
		if plateRegex.MatchString(txt) && *detection.Confidence > bestConfidence {
			bestPlate = txt
			bestConfidence = *detection.Confidence
		}
	}

	if bestPlate == "" {
		return "", 0, ErrNoPlateDetected
	}
	log.Printf("LPRService: nhận dạng biển số %s (độ tin cậy %.1f%%)", bestPlate, bestConfidence)
	return bestPlate, bestConfidence, nil
}
