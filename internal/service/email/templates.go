package email

const bookingCancelledTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Booking Cancelled</h2>
  <p>Dear {{.FullName}},</p>
  <p>Your battery swap booking <strong>#{{.BookingID}}</strong> has been cancelled.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><strong>Station</strong></td><td>{{.StationName}}</td></tr>
    <tr><td><strong>Location</strong></td><td>{{.StationLocation}}</td></tr>
    <tr><td><strong>Contact</strong></td><td>{{.StationContact}}</td></tr>
    <tr><td><strong>Booking time</strong></td><td>{{.BookingTime}}</td></tr>
    {{if .VehicleModel}}<tr><td><strong>Vehicle</strong></td><td>{{.VehicleModel}}</td></tr>{{end}}
    {{if .BatteryType}}<tr><td><strong>Battery type</strong></td><td>{{.BatteryType}}</td></tr>{{end}}
    <tr><td><strong>Status</strong></td><td>{{.Status}}</td></tr>
  </table>
  {{if .CancellationPolicy}}<p>{{.CancellationPolicy}}</p>{{end}}
  <p>If you believe this is a mistake, please contact the station.</p>
</body>
</html>
`

const bookingConfirmedTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Booking Confirmed</h2>
  <p>Dear {{.FullName}},</p>
  <p>Your battery swap booking <strong>#{{.BookingID}}</strong> is confirmed.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><strong>Station</strong></td><td>{{.StationName}}</td></tr>
    <tr><td><strong>Location</strong></td><td>{{.StationLocation}}</td></tr>
    <tr><td><strong>Booking time</strong></td><td>{{.BookingTime}}</td></tr>
    {{if .VehicleModel}}<tr><td><strong>Vehicle</strong></td><td>{{.VehicleModel}}</td></tr>{{end}}
  </table>
  <p>Your confirmation code: <strong>{{.ConfirmationCode}}</strong></p>
  <p>Show this code at the station to start your swap.</p>
</body>
</html>
`

const welcomeTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Welcome to EV Battery Swap!</h2>
  <p>Hi {{.UserName}},</p>
  <p>Your account ({{.Email}}) is ready. Register a vehicle and pick a swap
  package to get started.</p>
</body>
</html>
`
