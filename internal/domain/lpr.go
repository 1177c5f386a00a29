package domain

// LPRProcessRequest nhận ảnh từ camera cổng (base64) để nhận dạng biển số.
// ManualOverride cho phép nhân viên nhập tay khi nhận dạng thất bại.
type LPRProcessRequest struct {
	ImageBase64    string `json:"image_base64"`
	SpotID         int    `json:"spot_id" binding:"required"`
	ManualOverride string `json:"manual_override,omitempty"`
}

type LPRProcessResponse struct {
	DetectedPlate string  `json:"detected_plate"`
	Confidence    float32 `json:"confidence"`
	IsManual      bool    `json:"is_manual"`
}
