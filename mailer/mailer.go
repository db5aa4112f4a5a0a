// Package mailer sends purchase-order emails with the rendered PDF attached.
package mailer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"consumable-app/apperr"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

type PurchaseOrderMail struct {
	To            string
	OrderNumber   string
	SupplierName  string
	ContactPerson string
	PDFPath       string
}

// bodyTemplate is the fixed plain-text body. %s slots: greeting, order number,
// sender company line.
const bodyTemplate = `%s

いつもお世話になっております。

注文書（%s）を送付いたしますので、
ご査収のほどよろしくお願いいたします。

添付ファイルをご確認ください。

よろしくお願いいたします。

%s`

func (m *Mailer) configured() bool {
	return m.Host != "" && m.User != "" && m.Password != "" && m.From != ""
}

// SendPurchaseOrder mails one purchase order PDF to the supplier. There is no
// retry; the caller decides whether a failure is fatal.
func (m *Mailer) SendPurchaseOrder(po PurchaseOrderMail) error {
	if !m.configured() {
		return fmt.Errorf("%w: SMTP設定が不完全です", apperr.ErrEmailConfig)
	}
	if po.To == "" {
		return apperr.Validationf("送信先メールアドレスが設定されていません")
	}
	if _, err := os.Stat(po.PDFPath); err != nil {
		return apperr.NotFoundf("注文書PDFが見つかりません: %s", po.OrderNumber)
	}

	greeting := "ご担当者様"
	if po.ContactPerson != "" {
		greeting = fmt.Sprintf("%s 様", po.ContactPerson)
	}
	if po.SupplierName != "" {
		greeting = fmt.Sprintf("%s\n%s", po.SupplierName+" 御中", greeting)
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.From, m.FromName)
	msg.SetHeader("To", po.To)
	msg.SetHeader("Subject", fmt.Sprintf("【注文書送付】%s - %s", po.OrderNumber, po.SupplierName))
	msg.SetBody("text/plain", fmt.Sprintf(bodyTemplate, greeting, po.OrderNumber, m.FromName))

	msg.Attach(filepath.Base(po.PDFPath), gomail.SetCopyFunc(func(w io.Writer) error {
		f, err := os.Open(po.PDFPath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	}))

	dialer := gomail.NewDialer(m.Host, m.Port, m.User, m.Password)
	dialer.SSL = m.UseTLS && m.Port == 465
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrEmailSend, err)
	}
	return nil
}
