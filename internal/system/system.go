package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// CoverExtensions are the file types accepted as a post cover.
var CoverExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".pdf"}

// IsCover reports whether name has a cover extension.
func IsCover(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range CoverExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// FindLatestCover returns path itself when it is a cover file, otherwise the
// newest cover file in the directory.
func FindLatestCover(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		if !IsCover(path) {
			return "", fmt.Errorf("%s: неподдерживаемый формат обложки", path)
		}
		return path, nil
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !IsCover(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(path, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено изображений", path)
	}

	return latestFile, nil
}

// Stats is a snapshot of the host and this process for /healthz.
type Stats struct {
	Goroutines   int     `json:"goroutines"`
	RSSBytes     uint64  `json:"rssBytes"`
	CPUPercent   float64 `json:"cpuPercent"`
	MemTotal     uint64  `json:"memTotal"`
	MemUsedRatio float64 `json:"memUsedRatio"`
}

// ReadStats collects Stats. Fields that cannot be read on this platform stay
// zero; the error is only returned when nothing could be read.
func ReadStats() (Stats, error) {
	st := Stats{Goroutines: runtime.NumGoroutine()}

	var errs []string
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			st.RSSBytes = mi.RSS
		} else {
			errs = append(errs, err.Error())
		}
		if cpu, err := p.CPUPercent(); err == nil {
			st.CPUPercent = cpu
		}
	} else {
		errs = append(errs, err.Error())
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		st.MemTotal = vm.Total
		st.MemUsedRatio = vm.UsedPercent / 100
	} else {
		errs = append(errs, err.Error())
	}

	if len(errs) == 3 {
		return st, fmt.Errorf("system stats: %s", strings.Join(errs, "; "))
	}
	return st, nil
}
