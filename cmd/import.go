package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/haierkeys/fast-note-ai-service/pkg/code"

	"github.com/gookit/goutil/dump"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type importFlags struct {
	dir    string
	config string
	uid    int64
	url    string
	dump   bool
}

func init() {
	importEnv := new(importFlags)

	var importCommand = &cobra.Command{
		Use:   "import --uid <uid> --url <video_url> [-c config_file]",
		Short: "Import a video as a note for a user. // 将视频导入为指定用户的笔记。",
		RunE: func(cmd *cobra.Command, args []string) error {
			changeDir(importEnv.dir)
			loadDotEnv()

			config, err := resolveConfig(importEnv.config)
			if err != nil {
				return err
			}

			_, lg, _, app, err := loadRuntime(config, "")
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Shutdown(context.Background()); err != nil {
					lg.Warn("app shutdown", zap.Error(err))
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.UserService.Exists(ctx, importEnv.uid); err != nil {
				return describe(err)
			}

			res, err := app.ImportService.Import(ctx, importEnv.uid, importEnv.url)
			if err != nil {
				return describe(err)
			}

			if importEnv.dump {
				dump.P(res)
				return nil
			}
			fmt.Printf("run %s: note %s (video %s)\n", res.RunID, res.NoteID, res.VideoID)
			if res.Note != nil {
				fmt.Printf("%s\n\n%s\n", res.Note.Title, res.Note.Description)
			}
			return nil
		},
	}

	rootCmd.AddCommand(importCommand)
	fs := importCommand.Flags()
	fs.StringVarP(&importEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&importEnv.config, "config", "c", "", "config file")
	fs.Int64Var(&importEnv.uid, "uid", 0, "owner user id")
	fs.StringVar(&importEnv.url, "url", "", "video url")
	fs.BoolVar(&importEnv.dump, "dump", false, "dump the full result")
	_ = importCommand.MarkFlagRequired("uid")
	_ = importCommand.MarkFlagRequired("url")
}

// describe 将业务错误码展开为可读的错误
func describe(err error) error {
	c, ok := err.(*code.Code)
	if !ok {
		return err
	}
	if c.HaveDetails() {
		return fmt.Errorf("%d %s: %v", c.Code(), c.Msg(), c.Details())
	}
	return fmt.Errorf("%d %s", c.Code(), c.Msg())
}
