package config

type WorkerKeyStruct struct {
	SubmittedAttemptsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	SubmittedAttemptsQueue: "submitted_attempts_queue",
}
