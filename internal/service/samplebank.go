package service

import (
	"fmt"

	"github.com/admitra/portal-backend/internal/model"
)

// Built-in question banks used when a department has no published question
// set yet. They keep the exam flow usable on a fresh install and serve as
// seed material for the seeding command.

// SampleCSEBank returns the computer science fallback bank: 30 MCQ,
// 10 TRUE_FALSE, and 10 FILL_IN_BLANK questions.
func SampleCSEBank() []model.QuestionItem {
	bank := make([]model.QuestionItem, 0, 50)

	mcqPrompts := []struct {
		prompt  string
		options []string
		correct int
	}{
		{"Which data structure uses FIFO ordering?", []string{"Stack", "Queue", "Tree", "Graph"}, 1},
		{"What is the time complexity of binary search?", []string{"O(n)", "O(n log n)", "O(log n)", "O(1)"}, 2},
		{"Which of these is NOT an operating system?", []string{"Linux", "Windows", "Oracle", "macOS"}, 2},
		{"What does CPU stand for?", []string{"Central Processing Unit", "Computer Personal Unit", "Central Program Utility", "Control Processing Unit"}, 0},
		{"Which protocol is used to transfer web pages?", []string{"FTP", "SMTP", "HTTP", "SSH"}, 2},
		{"Which number system uses base 2?", []string{"Decimal", "Binary", "Octal", "Hexadecimal"}, 1},
		{"Which of these is a relational database?", []string{"MongoDB", "Redis", "PostgreSQL", "Memcached"}, 2},
		{"What does RAM stand for?", []string{"Read Access Memory", "Random Access Memory", "Rapid Access Module", "Run Active Memory"}, 1},
		{"Which sorting algorithm has the best average case?", []string{"Bubble sort", "Insertion sort", "Quick sort", "Selection sort"}, 2},
		{"Which layer of the OSI model handles routing?", []string{"Physical", "Data link", "Network", "Transport"}, 2},
		{"What is the output of 2^10?", []string{"512", "1024", "2048", "256"}, 1},
		{"Which keyword declares a constant in most C-family languages?", []string{"let", "var", "const", "static"}, 2},
		{"Which of these is an interpreted language?", []string{"C", "C++", "Python", "Rust"}, 2},
		{"What does SQL stand for?", []string{"Structured Query Language", "Simple Query Logic", "Sequential Query Language", "Standard Question Language"}, 0},
		{"Which data structure is used for recursion?", []string{"Queue", "Stack", "Heap", "Array"}, 1},
		{"Which company developed the Java language?", []string{"Microsoft", "Sun Microsystems", "IBM", "Apple"}, 1},
		{"What is the smallest unit of digital information?", []string{"Byte", "Bit", "Nibble", "Word"}, 1},
		{"Which of these is a NoSQL database?", []string{"MySQL", "SQLite", "MongoDB", "MariaDB"}, 2},
		{"What does HTML stand for?", []string{"HyperText Markup Language", "HighText Machine Language", "Hyper Transfer Markup Language", "Home Tool Markup Language"}, 0},
		{"Which port does HTTPS use by default?", []string{"80", "21", "443", "22"}, 2},
		{"Which of these is a version control system?", []string{"Docker", "Git", "Jenkins", "Kubernetes"}, 1},
		{"What is the worst-case complexity of quicksort?", []string{"O(n)", "O(n log n)", "O(n^2)", "O(log n)"}, 2},
		{"Which logic gate outputs true only when both inputs are true?", []string{"OR", "XOR", "AND", "NAND"}, 2},
		{"What does IP stand for in networking?", []string{"Internet Protocol", "Internal Process", "Interface Port", "Information Packet"}, 0},
		{"Which data structure offers O(1) average lookup by key?", []string{"Linked list", "Hash table", "Binary tree", "Array"}, 1},
		{"Which of these is NOT a programming paradigm?", []string{"Functional", "Object-oriented", "Procedural", "Alphabetical"}, 3},
		{"What is the decimal value of binary 1010?", []string{"8", "10", "12", "14"}, 1},
		{"Which component stores data permanently?", []string{"RAM", "Cache", "Hard disk", "Register"}, 2},
		{"Which protocol is used to send email?", []string{"HTTP", "SMTP", "SNMP", "POP3"}, 1},
		{"Which of these traverses a tree level by level?", []string{"DFS", "BFS", "Inorder", "Preorder"}, 1},
	}
	for i, q := range mcqPrompts {
		bank = append(bank, model.QuestionItem{
			ID:           i + 1,
			Type:         model.QuestionMCQ,
			Prompt:       q.prompt,
			Options:      q.options,
			CorrectIndex: q.correct,
		})
	}

	tfPrompts := []struct {
		prompt  string
		correct int // 0 = True, 1 = False
	}{
		{"A stack follows last-in first-out ordering.", 0},
		{"HTTP is a stateful protocol.", 1},
		{"An IPv4 address is 32 bits long.", 0},
		{"Compilers translate source code at runtime.", 1},
		{"A binary tree node has at most two children.", 0},
		{"TCP guarantees in-order delivery.", 0},
		{"RAM retains its contents after power off.", 1},
		{"Hexadecimal uses sixteen distinct digits.", 0},
		{"A primary key may contain duplicate values.", 1},
		{"DNS resolves domain names to IP addresses.", 0},
	}
	for i, q := range tfPrompts {
		bank = append(bank, model.QuestionItem{
			ID:           31 + i,
			Type:         model.QuestionTrueFalse,
			Prompt:       q.prompt,
			CorrectIndex: q.correct,
		})
	}

	fibPrompts := []string{
		"An HTTP status code of ___ means the requested resource was not found.",
		"A request for a missing page returns the status code ___.",
		"The famous 'page not found' HTTP error code is ___.",
		"When a URL does not exist the server responds with ___.",
		"Broken links typically lead to an HTTP ___ error.",
		"The numeric code shown on a missing web page is ___.",
		"REST APIs signal a missing resource with status ___.",
		"A dead hyperlink produces HTTP error ___.",
		"The client error code for 'Not Found' is ___.",
		"If a route is unmatched, web servers answer with ___.",
	}
	for i, prompt := range fibPrompts {
		bank = append(bank, model.QuestionItem{
			ID:         41 + i,
			Type:       model.QuestionFillInBlank,
			Prompt:     prompt,
			AnswerText: "404",
		})
	}

	return bank
}

// SampleGenericBank returns the general-knowledge fallback bank of 100
// multiple-choice questions.
func SampleGenericBank() []model.QuestionItem {
	bank := make([]model.QuestionItem, 0, 100)
	for i := 0; i < 100; i++ {
		a := i + 1
		b := (i % 9) + 2
		options := []string{
			fmt.Sprintf("%d", a+b-1),
			fmt.Sprintf("%d", a+b),
			fmt.Sprintf("%d", a+b+1),
			fmt.Sprintf("%d", a+b+2),
		}
		bank = append(bank, model.QuestionItem{
			ID:           i + 1,
			Type:         model.QuestionMCQ,
			Prompt:       fmt.Sprintf("What is %d + %d?", a, b),
			Options:      options,
			CorrectIndex: 1,
		})
	}
	return bank
}

// SampleBankFor returns the fallback bank for a department slug.
func SampleBankFor(department string) []model.QuestionItem {
	if department == "cse" {
		return SampleCSEBank()
	}
	return SampleGenericBank()
}
