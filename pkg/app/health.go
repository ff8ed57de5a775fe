package app

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/womat/debug"
)

// HandleHealth returns data about the health of myself.
// output example:
//  {"NumGoroutines":11,"NumCPU":4,"CPUPercent":3.5,"HeapAllocatedMB":3,"SysMemoryMB":12,
//   "HostMemoryUsedPercent":41.2,"SampleOverruns":0,"Version":"1.0.00+20261001","ProgLang":"go1.25.0"}
func (app *App) HandleHealth() fiber.Handler {
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	host, _ := os.Hostname()

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request health")

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		var cpuPercent, memPercent float64
		if p, err := cpu.Percent(0, false); err == nil && len(p) > 0 {
			cpuPercent = p[0]
		}
		if v, err := mem.VirtualMemory(); err == nil {
			memPercent = v.UsedPercent
		}

		var overruns int64
		if app.sampler != nil {
			overruns = app.sampler.Overruns()
		}

		healthData := struct {
			NumGoroutines         int
			NumCPU                int
			CPUPercent            float64
			HeapAllocatedBytes    uint64
			HeapAllocatedMB       uint64
			SysMemoryBytes        uint64
			SysMemoryMB           uint64
			HostMemoryUsedPercent float64
			SampleOverruns        int64
			Version               string
			ProgLang              string
			HostName              string
			Time                  string
		}{
			NumGoroutines:         runtime.NumGoroutine(),
			NumCPU:                runtime.NumCPU(),
			CPUPercent:            cpuPercent,
			HeapAllocatedBytes:    m.Alloc,
			HeapAllocatedMB:       bToMb(m.Alloc),
			SysMemoryBytes:        m.Sys,
			SysMemoryMB:           bToMb(m.Sys),
			HostMemoryUsedPercent: memPercent,
			SampleOverruns:        overruns,
			ProgLang:              runtime.Version(),
			Version:               VERSION,
			HostName:              host,
			Time:                  time.Now().Format(time.RFC3339),
		}
		ctx.Status(http.StatusOK)
		return ctx.JSON(healthData)
	}
}
