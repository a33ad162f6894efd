package logger

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var applog = logging.Logger("logger")

// Setup 配置全局日志级别与输出格式，format 取 color、plain 或 json
func Setup(level, format string) error {
	lvl, err := logging.LevelFromString(level)
	if err != nil {
		return fmt.Errorf("无效的日志级别 %q: %v", level, err)
	}

	cfg := logging.Config{
		Format: logging.ColorizedOutput,
		Stderr: true,
		Level:  lvl,
	}
	switch format {
	case "plain":
		cfg.Format = logging.PlaintextOutput
	case "json":
		cfg.Format = logging.JSONOutput
	}

	logging.SetupLogging(cfg)
	return nil
}

// AccessLog 按天轮转的访问日志
type AccessLog struct {
	logFile     *os.File
	logger      *log.Logger
	mutex       sync.Mutex
	logDir      string
	prefix      string
	currentDate string
	now         func() time.Time
}

// NewAccessLog 在 logDir 下创建 <prefix>-YYYY-MM-DD.log
func NewAccessLog(logDir, prefix string) (*AccessLog, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	l := &AccessLog{
		logDir: logDir,
		prefix: prefix,
		now:    time.Now,
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()
	if err := l.rotateLocked(); err != nil {
		return nil, err
	}

	return l, nil
}

// rotateLocked 日期变化时切换日志文件，调用方持有锁
func (l *AccessLog) rotateLocked() error {
	currentDate := l.now().Format("2006-01-02")

	// 日期未变，无需轮转
	if l.currentDate == currentDate && l.logFile != nil {
		return nil
	}

	if l.logFile != nil {
		l.logFile.Close()
	}

	f, err := os.OpenFile(l.Path(currentDate), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	l.logFile = f
	l.logger = log.New(f, "", log.LstdFlags)
	l.currentDate = currentDate

	return nil
}

// Path 返回某天的日志文件路径
func (l *AccessLog) Path(date string) string {
	return filepath.Join(l.logDir, fmt.Sprintf("%s-%s.log", l.prefix, date))
}

// Printf 写入一行访问日志
func (l *AccessLog) Printf(format string, v ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if err := l.rotateLocked(); err != nil {
		applog.Errorf("访问日志轮转失败: %v", err)
		return
	}
	l.logger.Printf(format, v...)
}

// Close 关闭日志文件
func (l *AccessLog) Close() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.logFile != nil {
		l.logFile.Close()
		l.logFile = nil
	}
}

// statusRecorder 记录响应状态码
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware 记录每个请求的方法、地址、状态码与耗时
func (l *AccessLog) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		l.Printf("%s %s %s %d %s", r.RemoteAddr, r.Method, r.URL.RequestURI(), rec.status, time.Since(start))
	})
}
