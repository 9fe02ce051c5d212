package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/compliance"
)

// ErrViolations 在 --strict 模式下发现违规时返回，用于让进程以非零状态退出
var ErrViolations = errors.New("排班存在违规")

type App struct {
	detector *compliance.Detector
	root     *cobra.Command
	noColor  bool
}

func NewApp() *App {
	a := &App{detector: compliance.NewDetector()}

	a.root = &cobra.Command{
		Use:           "shiftcheck",
		Short:         "离线检查排班是否符合劳动规则",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if a.noColor {
				color.NoColor = true
			}
		},
	}

	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "关闭彩色输出")

	a.root.AddCommand(a.checkCmd())
	a.root.AddCommand(a.hoursCmd())

	return a
}

func (a *App) SetOutput(w io.Writer) {
	a.root.SetOut(w)
	a.root.SetErr(w)
}

func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

func (a *App) Execute() error {
	return a.root.Execute()
}

func (a *App) checkCmd() *cobra.Command {
	var (
		strict bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "check <file.toml>",
		Short: "检查一个月的排班文件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := LoadRoster(args[0])
			if err != nil {
				return err
			}

			state := a.detector.Evaluate(roster.Shifts, roster.Employees, roster.Month)
			violations := state.Violations(roster.Employees)
			problems := roster.FormatProblems()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(state); err != nil {
					return err
				}
			} else {
				printReport(out, roster, violations, problems)
			}

			if strict && (len(violations) > 0 || len(problems) > 0) {
				return ErrViolations
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "存在违规或格式问题时以非零状态退出")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出冲突集合")

	return cmd
}

func (a *App) hoursCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hours <H:MM-H:MM>",
		Short: "检查单个时间段是否超过 12 小时",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			iv, ok := compliance.ParseTimeRange(args[0])
			if !ok {
				colorWarn.Fprintf(out, "无法解析时间段 %s\n", args[0])
				return nil
			}

			if result := a.detector.CheckExceeds12h(args[0]); result != nil {
				colorError.Fprintln(out, result.Message)
				return nil
			}

			colorOK.Fprintf(out, "时长 %.1f 小时，没有超过上限\n", iv.Hours())
			return nil
		},
	}
}

func printReport(out io.Writer, roster *Roster, violations []compliance.Violation, problems []string) {
	colorHeader.Fprintf(out, "%s 排班检查：%d 名员工，%d 个班次\n", roster.Month.Format("2006-01"), len(roster.Employees), len(roster.Shifts))

	for _, p := range problems {
		colorMuted.Fprintf(out, "  [格式] %s\n", p)
	}

	if len(violations) == 0 {
		colorOK.Fprintln(out, "没有发现违规")
		return
	}

	for _, v := range violations {
		name := v.EmployeeName
		if name == "" {
			name = fmt.Sprintf("#%d", v.EmployeeID)
		}
		kindColor(v.Kind).Fprintf(out, "  [%s] %s：%s\n", kindLabel(v.Kind), name, v.Message)
	}
	colorHeader.Fprintf(out, "共 %d 处违规\n", len(violations))
}
