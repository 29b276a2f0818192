// studentsctl is a command-line client for a running students-api server.
//
//	studentsctl list --course physics
//	studentsctl add --name "Ali Ahmed" --roll ST010 --age 20 --grade A --email ali@example.com --course CS
//	studentsctl update 3 --grade B+
//	studentsctl delete 3 --yes
//	STUDENTS_API_URL=http://students.internal:8082 studentsctl stats
package main

import (
	"fmt"
	"os"

	"github.com/aanand-mishra/student-records/cmd/studentsctl/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
