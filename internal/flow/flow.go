// Package flow — чистая машина состояний подачи объявления.
// Транспорт (Telegram) переводит апдейты в тегированные Input,
// поэтому здесь нет ни магических строк, ни знания о боте.
package flow

type State string

const (
	StateTitle       State = "await_title"
	StateDescription State = "await_description"
	StatePrice       State = "await_price"
	StatePhotos      State = "await_photos"
	StatePhone       State = "await_phone"
	StateDone        State = "done"
)

const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 1000
	MaxPhotos         = 5
)

type InputKind int

const (
	InputText InputKind = iota
	InputPhoto
	InputContact
	InputPhotosDone
	InputPhotosSkip
)

type Input struct {
	Kind     InputKind
	Text     string
	PhotoRef string
	Phone    string
}

// Reply — что транспорт должен ответить после шага.
type Reply int

const (
	ReplyAskDescription Reply = iota
	ReplyAskPrice
	ReplyAskPhotos
	ReplyAskPhone
	ReplyComplete

	ReplyTitleInvalid
	ReplyDescriptionInvalid
	ReplyPriceInvalid
	ReplyPhotoAdded
	ReplyPhotoLimit
	ReplyPhotosUnexpected
	ReplySkipNotFirst
	ReplyPhoneInvalid
)

// Draft — несохранённое объявление одной сессии.
type Draft struct {
	UserID     int64
	IsReferral bool
	State      State

	Title       string
	Description string
	Price       int64
	Photos      []string
	Phone       string

	// KnownPhone — телефон из профиля; если есть, шаг телефона пропускается.
	KnownPhone string
}

func NewDraft(userID int64, isReferral bool, knownPhone string) *Draft {
	return &Draft{
		UserID:     userID,
		IsReferral: isReferral,
		State:      StateTitle,
		KnownPhone: knownPhone,
	}
}

// Advance применяет один ввод. При невалидном вводе состояние не меняется,
// транспорт повторяет подсказку того же шага.
func (d *Draft) Advance(in Input) Reply {
	switch d.State {
	case StateTitle:
		return d.onTitle(in)
	case StateDescription:
		return d.onDescription(in)
	case StatePrice:
		return d.onPrice(in)
	case StatePhotos:
		return d.onPhotos(in)
	case StatePhone:
		return d.onPhone(in)
	}
	return ReplyComplete
}

func (d *Draft) onTitle(in Input) Reply {
	if in.Kind != InputText || !ValidTitle(in.Text) {
		return ReplyTitleInvalid
	}
	d.Title = in.Text
	d.State = StateDescription
	return ReplyAskDescription
}

func (d *Draft) onDescription(in Input) Reply {
	if in.Kind != InputText || !ValidDescription(in.Text) {
		return ReplyDescriptionInvalid
	}
	d.Description = in.Text
	d.State = StatePrice
	return ReplyAskPrice
}

func (d *Draft) onPrice(in Input) Reply {
	if in.Kind != InputText {
		return ReplyPriceInvalid
	}
	price, err := ParsePrice(in.Text)
	if err != nil {
		return ReplyPriceInvalid
	}
	d.Price = price
	d.State = StatePhotos
	return ReplyAskPhotos
}

func (d *Draft) onPhotos(in Input) Reply {
	switch in.Kind {
	case InputPhoto:
		if len(d.Photos) >= MaxPhotos {
			return ReplyPhotoLimit
		}
		d.Photos = append(d.Photos, in.PhotoRef)
		return ReplyPhotoAdded
	case InputPhotosSkip:
		// «без фото» валиден только пока ни одной фотографии нет
		if len(d.Photos) > 0 {
			return ReplySkipNotFirst
		}
		return d.leavePhotos()
	case InputPhotosDone:
		return d.leavePhotos()
	}
	return ReplyPhotosUnexpected
}

func (d *Draft) leavePhotos() Reply {
	if d.KnownPhone != "" {
		d.Phone = d.KnownPhone
		d.State = StateDone
		return ReplyComplete
	}
	d.State = StatePhone
	return ReplyAskPhone
}

func (d *Draft) onPhone(in Input) Reply {
	var (
		phone string
		err   error
	)
	switch in.Kind {
	case InputContact:
		phone, err = NormalizeContactPhone(in.Phone)
	case InputText:
		phone, err = NormalizePhone(in.Text)
	default:
		return ReplyPhoneInvalid
	}
	if err != nil {
		return ReplyPhoneInvalid
	}
	d.Phone = phone
	d.State = StateDone
	return ReplyComplete
}
