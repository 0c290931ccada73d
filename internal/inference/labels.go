package inference

// Label is one of the fixed emotion classes of the classifier output.
type Label string

const (
	Angry    Label = "Angry"
	Disgust  Label = "Disgust"
	Fear     Label = "Fear"
	Happy    Label = "Happy"
	Sad      Label = "Sad"
	Surprise Label = "Surprise"
	Neutral  Label = "Neutral"
)

// NumClasses is the length of every PredictionVector.
const NumClasses = 7

// Labels is index-aligned with the model output. Changing the order breaks
// every pretrained model this service loads.
var Labels = [NumClasses]Label{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral}

func (l Label) String() string {
	return string(l)
}

// IsValid reports whether l belongs to the fixed vocabulary.
func (l Label) IsValid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}
