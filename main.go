package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	awsgo_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/farai-coder/parklee-backend-official/internal/api"
	"github.com/farai-coder/parklee-backend-official/internal/api/handler"
	"github.com/farai-coder/parklee-backend-official/internal/api/middleware"
	"github.com/farai-coder/parklee-backend-official/internal/config"
	"github.com/farai-coder/parklee-backend-official/internal/notify"
	"github.com/farai-coder/parklee-backend-official/internal/policy"
	"github.com/farai-coder/parklee-backend-official/internal/repository/postgresql"
	"github.com/farai-coder/parklee-backend-official/internal/scheduler"
	"github.com/farai-coder/parklee-backend-official/internal/service"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Cấu hình đã được tải.")

	// 2. Setup Database Connection
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Không thể kết nối database: %v", err)
	}
	defer db.Close()
	log.Println("Đã kết nối database thành công!")

	if cfg.RunMigrations {
		if err := postgresql.RunMigrations(cfg); err != nil {
			log.Fatalf("Không thể chạy migrations: %v", err)
		}
		log.Println("Migrations đã được áp dụng.")
	}

	// 3. Khởi tạo AWS SDK Config và clients
	awsSDKCfg, err := awsgo_config.LoadDefaultConfig(context.TODO(), awsgo_config.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatalf("Không thể tải AWS SDK config: %v", err)
	}
	log.Println("Đã tải AWS SDK config thành công cho region:", cfg.AWSRegion)

	sqsClient := sqs.NewFromConfig(awsSDKCfg)
	rekognitionClient := rekognition.NewFromConfig(awsSDKCfg)

	// 4. Initialize Repositories
	repos := postgresql.NewRepositories(db)
	txRunner := postgresql.NewTxManager(db)

	// 5. WebSocket manager phát trạng thái chỗ đỗ real-time
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()
	log.Println("WebSocket Manager đã được khởi động.")

	// 6. Report publisher (fire-and-forget lên SQS)
	var publisher service.ReportPublisher
	if cfg.SQSReportQueueURL == "" {
		log.Println("CẢNH BÁO: SQS_REPORT_QUEUE_URL chưa được cấu hình. Report sẽ chỉ lưu DB.")
		publisher = service.NewNoopPublisher()
	} else {
		publisher = notify.NewSQSReportPublisher(sqsClient, cfg.SQSReportQueueURL)
	}

	// 7. Initialize Services
	authService := service.NewAuthService(repos.Users, cfg.JWTSecret, cfg.JWTExpirationHours)
	eventWindow := policy.EventWindow{Lead: cfg.EventWindowLead, Enforced: cfg.EventWindowEnforced}
	reservationService := service.NewReservationService(repos, txRunner, webSocketManager, eventWindow, cfg.OneReservationPerUser)
	sessionService := service.NewSessionService(repos, txRunner, webSocketManager, publisher)
	parkingService := service.NewParkingService(repos, txRunner, webSocketManager)
	eventService := service.NewEventService(repos.Events)
	reportService := service.NewReportService(repos.Reports, publisher)
	lprService := service.NewLPRService(rekognitionClient, sessionService)

	// 8. Initialize Auth Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// 9. Scheduler kích hoạt / đóng reservation theo chu kỳ
	var wg sync.WaitGroup
	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	reservationScheduler := scheduler.NewReservationScheduler(reservationService, time.Minute)
	wg.Add(1)
	go func() {
		defer wg.Done()
		reservationScheduler.Start(schedulerCtx)
	}()

	// 10. Setup HTTP Router
	router := api.SetupRouter(authService, parkingService, reservationService, sessionService,
		eventService, reportService, lprService, authMiddleware, webSocketManager)

	// 11. Start HTTP Server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server đang chạy trên port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Lỗi ListenAndServe(): %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Đang tắt server...")

	cancelScheduler()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server buộc phải tắt: %v", err)
	}

	log.Println("Đang chờ scheduler dừng (tối đa 5 giây)...")
	c := make(chan struct{})
	go func() {
		defer close(c)
		wg.Wait()
	}()
	select {
	case <-c:
		log.Println("Scheduler đã dừng hoàn toàn.")
	case <-time.After(5 * time.Second):
		log.Println("Scheduler không dừng trong thời gian chờ.")
	}

	log.Println("Server đã tắt.")
}
