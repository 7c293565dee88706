package entity

// ASRTranscribeResponse is the reply of the speech recognition service
type ASRTranscribeResponse struct {
	Transcriptions string `json:"transcriptions"`
}
