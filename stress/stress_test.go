package stress

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	cfgpkg "saltenc/internal/config"
	"saltenc/internal/pipeline"
)

// 合成构建顺序使用的动作（按表中来源名循环）。
var actions = []string{
	"Probe", "Pylon", "Gateway", "Assimilator", "Nexus", "Cybernetics Core",
	"Stalker", "Warp Gate", "MULE", "Chrono Boost Nexus", "Protoss Ground Weapons Level 2",
}

// baseConfig 构造可运行的最小配置（fs writer 写入 outDir）。
func baseConfig(input, outDir string) cfgpkg.Config {
	cfg := cfgpkg.DefaultTemplateConfig()
	cfg.Input = input
	cfg.Author = "stress"
	cfg.Table = cfgpkg.Table{Source: filepath.Join("..", "testdata", "files", "salt_map.tsv")}
	cfg.Options.Table = nil
	cfg.Logging.Level = "error"
	cfg.Components.Writer = "fs"
	cfg.Options.Writer = json.RawMessage(fmt.Sprintf(`{"output_dir":%q,"atomic":false}`, outDir))
	return cfg
}

// runPipeline 执行完整流水线。
func runPipeline(cfg cfgpkg.Config) (pipeline.Report, error) {
	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		return pipeline.Report{}, err
	}
	return pipeline.Run(context.Background(), comp, set, nil)
}

// TestStress 在不同输入规模下运行流水线并记录延迟统计。
func TestStress(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	sizes := []int{1_000, 10_000, 50_000}
	for _, n := range sizes {
		t.Run(fmt.Sprintf("lines_%d", n), func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "synthetic.txt")
			if err := writeSynthetic(in, n); err != nil {
				t.Fatalf("gen input: %v", err)
			}
			const runs = 5
			latencies := make([]time.Duration, 0, runs)
			var first []byte
			for i := 0; i < runs; i++ {
				outDir := filepath.Join(dir, fmt.Sprintf("out-%d", i))
				start := time.Now()
				rep, err := runPipeline(baseConfig(in, outDir))
				dur := time.Since(start)
				if err != nil {
					t.Fatalf("run %d: %v", i, err)
				}
				if rep.Lines != n {
					t.Fatalf("run %d: lines %d != %d", i, rep.Lines, n)
				}
				got, err := os.ReadFile(filepath.Join(outDir, "synthetic.salt"))
				if err != nil {
					t.Fatalf("read output: %v", err)
				}
				// 相同输入多次运行输出逐字节一致
				if first == nil {
					first = got
				} else if string(got) != string(first) {
					t.Fatalf("run %d: output differs", i)
				}
				latencies = append(latencies, dur)
			}
			sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
			var total time.Duration
			for _, d := range latencies {
				total += d
			}
			avg := total / time.Duration(len(latencies))
			idx := int(math.Ceil(float64(len(latencies))*0.95)) - 1
			if idx < 0 {
				idx = 0
			}
			t.Logf("行数%d 平均%v 95%%延迟%v", n, avg, latencies[idx])
		})
	}
}

// writeSynthetic 生成 n 行合法构建顺序（时间单调递增，补给在 12..199 间循环）。
func writeSynthetic(path string, n int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := emit(w, n); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func emit(w io.Writer, n int) error {
	for i := 0; i < n; i++ {
		sec := i % 6000
		if _, err := fmt.Fprintf(w, "%02d:%02d %d %s\n", sec/60, sec%60, 12+i%188, actions[i%len(actions)]); err != nil {
			return err
		}
	}
	return nil
}
