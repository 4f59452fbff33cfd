package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli"
)

// taskctl is a small operator tool over the HTTP API: list tasks, pause and
// resume claims, delete tasks, and check worker liveness.

func main() {
	app := cli.NewApp()
	app.Name = "taskctl"
	app.Usage = "Task runner operator CLI"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "server",
			Usage:  "Backend base URL",
			Value:  "http://localhost:9010",
			EnvVar: "TASKRUNNER_SERVER",
		},
		cli.StringFlag{
			Name:   "session",
			Usage:  "Session id used as the caller identity",
			EnvVar: "TASKRUNNER_SESSION",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "tasks",
			Usage: "List tasks (optionally filtered by --status)",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "status", Usage: "queued|processing|completed|failed"},
			},
			Action: listTasks,
		},
		{
			Name:      "revoke",
			Usage:     "Pause claims on a task and delete pending leases",
			ArgsUsage: "<task-id>",
			Action:    taskAction("revoke"),
		},
		{
			Name:      "reinvoke",
			Usage:     "Re-enable claims on a revoked task",
			ArgsUsage: "<task-id>",
			Action:    taskAction("reinvoke"),
		},
		{
			Name:      "delete",
			Usage:     "Delete a task with its results and artifacts",
			ArgsUsage: "<task-id>",
			Action:    deleteTask,
		},
		{
			Name:      "results",
			Usage:     "Show a task's bucket results and live assignments",
			ArgsUsage: "<task-id>",
			Action:    taskResults,
		},
		{
			Name:      "online",
			Usage:     "Check whether a worker has a recent heartbeat",
			ArgsUsage: "<worker-id>",
			Action:    workerOnline,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func request(c *cli.Context, method, path string) (string, error) {
	url := strings.TrimRight(c.GlobalString("server"), "/") + path

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return "", err
	}
	if session := c.GlobalString("session"); session != "" {
		req.Header.Set("x-session-id", session)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}

func printJSON(raw string) {
	var buf strings.Builder
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		fmt.Println(raw)
		return
	}
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
	fmt.Print(buf.String())
}

func listTasks(c *cli.Context) error {
	path := "/api/tasks"
	if status := c.String("status"); status != "" {
		path += "?status=" + status
	}
	body, err := request(c, http.MethodGet, path)
	if err != nil {
		return err
	}
	printJSON(body)
	return nil
}

func taskAction(action string) func(*cli.Context) error {
	return func(c *cli.Context) error {
		taskID := c.Args().First()
		if taskID == "" {
			return fmt.Errorf("task id is required")
		}
		body, err := request(c, http.MethodPost, "/api/tasks/"+taskID+"/"+action)
		if err != nil {
			return err
		}
		printJSON(body)
		return nil
	}
}

func deleteTask(c *cli.Context) error {
	taskID := c.Args().First()
	if taskID == "" {
		return fmt.Errorf("task id is required")
	}
	body, err := request(c, http.MethodDelete, "/api/tasks/"+taskID)
	if err != nil {
		return err
	}
	printJSON(body)
	return nil
}

func taskResults(c *cli.Context) error {
	taskID := c.Args().First()
	if taskID == "" {
		return fmt.Errorf("task id is required")
	}
	body, err := request(c, http.MethodGet, "/api/tasks/"+taskID+"/results")
	if err != nil {
		return err
	}
	printJSON(body)
	return nil
}

func workerOnline(c *cli.Context) error {
	workerID := c.Args().First()
	if workerID == "" {
		return fmt.Errorf("worker id is required")
	}
	body, err := request(c, http.MethodGet, "/api/worker/online/"+workerID)
	if err != nil {
		return err
	}
	printJSON(body)
	return nil
}
